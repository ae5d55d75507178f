package intelligence

import "errors"

// ErrNoDocuments reports an analysis run over a collection that contains no
// documents.
var ErrNoDocuments = errors.New("intelligence: no documents found")
