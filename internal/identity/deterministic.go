package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID derives the stable identifier for an emitted document. The
// slug already encodes source and relative path, so it is the natural
// collision-free key.
func DocumentUUID(slug string) uuid.UUID {
	return UUID("mdc:document:" + strings.ToLower(strings.TrimSpace(slug)))
}

// SourceUUID identifies a documentation source checked out at a specific ref.
func SourceUUID(repo, ref string) uuid.UUID {
	return UUID("mdc:source:" + strings.ToLower(strings.TrimSpace(repo)) + "@" + strings.TrimSpace(ref))
}

// NewRunID returns a random identifier that correlates the log lines and
// summary of a single pipeline run.
func NewRunID() uuid.UUID {
	return uuid.New()
}
