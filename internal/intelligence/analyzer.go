package intelligence

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-mdc/internal/identity"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Config configures the analyzer and its components. Workers controls the
// per-document phase concurrency; zero means one worker per CPU. Now
// overrides the clock for freshness scoring and timestamps.
type Config struct {
	Workers int
	Now     func() time.Time

	// StateFile overrides where incremental analysis state is kept.
	// Defaults to StateFileName under the content root.
	StateFile string
	// IndexFile overrides where the intelligence index is written.
	// Defaults to IndexFileName under the content root.
	IndexFile string

	TopicExtraction TopicExtractorConfig
	QualityScoring  QualityScorerConfig
	Similarity      SimilarityConfig
	CrossLinking    CrossLinkerConfig
}

// Analyzer runs the content intelligence pass over a document store. Per
// document work (topics, quality, fingerprints) runs concurrently; the
// relationship pass (cross linking, duplicate detection) runs once over the
// complete result set. Results are written back into document metadata and
// summarized in a JSON Lines index at the content root.
type Analyzer struct {
	store       interfaces.DocumentStore
	root        string
	stateFile   string
	indexFile   string
	topics      *TopicExtractor
	quality     *QualityScorer
	similarity  *SimilarityAnalyzer
	crossLinker *CrossLinker
	workers     int
	now         func() time.Time
	logger      interfaces.Logger
}

// New builds an analyzer over store. The root directory receives the state
// file and the intelligence index.
func New(store interfaces.DocumentStore, root string, cfg Config, logger interfaces.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NoOp()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	qualityCfg := cfg.QualityScoring
	if qualityCfg.Now == nil {
		qualityCfg.Now = now
	}
	return &Analyzer{
		store:       store,
		root:        filepath.Clean(root),
		stateFile:   cfg.StateFile,
		indexFile:   cfg.IndexFile,
		topics:      NewTopicExtractor(cfg.TopicExtraction, logger),
		quality:     NewQualityScorer(qualityCfg, logger),
		similarity:  NewSimilarityAnalyzer(cfg.Similarity, logger),
		crossLinker: NewCrossLinker(cfg.CrossLinking, logger),
		workers:     cfg.Workers,
		now:         now,
		logger:      logger,
	}
}

// Analyze runs the enabled features over every document in the store. A nil
// feature set enables all features. With incremental set, documents whose
// content hash matches the recorded analysis state are skipped.
//
// Per-document failures are counted in the summary rather than aborting the
// run. ErrNoDocuments is returned when the store is empty.
func (a *Analyzer) Analyze(ctx context.Context, features FeatureSet, incremental bool) (*Summary, error) {
	if features == nil {
		features = DefaultFeatures()
	}

	runLogger := logging.WithFields(a.logger, map[string]any{
		"run_id": identity.NewRunID().String(),
	})
	runLogger.Info("starting intelligence analysis",
		"root", a.root,
		"features", strings.Join(features.Names(), ","),
		"incremental", incremental,
	)

	documents, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(documents) == 0 {
		a.logger.Warn("no documents found for analysis", "root", a.root)
		return nil, ErrNoDocuments
	}

	previous := loadAnalysisState(a.statePath(), a.logger)
	included := a.filterForAnalysis(documents, previous, incremental)

	summary := &Summary{
		Skipped:         len(documents) - len(included),
		FeaturesEnabled: features.Names(),
		Timestamp:       a.timestamp(),
	}

	a.logger.Info("documents selected for analysis",
		"total", len(documents),
		"selected", len(included),
		"skipped", summary.Skipped,
	)

	analyses := a.analyzeDocuments(ctx, included, features, summary)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	relationshipsDone := false
	if features.Has(FeatureCrossLinking) || features.Has(FeatureDuplicateDetection) {
		if err := a.analyzeRelationships(analyses, features); err != nil {
			a.logger.Error("relationship analysis failed", "error", err.Error())
			summary.Errors++
		} else {
			relationshipsDone = true
			a.logger.Info("relationship analysis complete", "documents", len(analyses))
		}
	}

	records := make([]map[string]any, len(analyses))
	for i, analysis := range analyses {
		records[i] = intelligenceRecord(analysis, features, relationshipsDone)
	}

	a.writeBack(ctx, analyses, records, summary)

	if err := a.mergeIndex(analyses, records); err != nil {
		a.logger.Error("intelligence index update failed", "error", err.Error())
	}
	if err := a.saveState(previous, included); err != nil {
		a.logger.Error("analysis state save failed", "error", err.Error())
	}

	runLogger.Info("intelligence analysis complete",
		"processed", summary.Processed,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, nil
}

// filterForAnalysis drops documents whose content is unchanged since the
// recorded state. Non-incremental runs include everything.
func (a *Analyzer) filterForAnalysis(documents []*interfaces.Document, previous analysisState, incremental bool) []*interfaces.Document {
	if !incremental {
		return documents
	}
	included := make([]*interfaces.Document, 0, len(documents))
	for _, doc := range documents {
		if entry, ok := previous[doc.Path]; ok && entry.ContentHash == contentHash(doc.Content) {
			a.logger.Debug("document unchanged since last analysis", "path", doc.Path)
			continue
		}
		included = append(included, doc)
	}
	return included
}

// analyzeDocuments runs the per-document phase across a worker pool and
// returns the successful analyses in input order.
func (a *Analyzer) analyzeDocuments(ctx context.Context, documents []*interfaces.Document, features FeatureSet, summary *Summary) []*Analysis {
	ordered := make([]*Analysis, len(documents))

	var mu sync.Mutex
	collect := func(index int, analysis *Analysis, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			a.logger.Error("document analysis failed",
				"path", documents[index].Path,
				"error", err.Error(),
			)
			summary.Errors++
			return
		}
		ordered[index] = analysis
		summary.Processed++
	}

	workers := a.effectiveWorkerCount(len(documents))
	if workers <= 1 {
		for i, doc := range documents {
			if ctx.Err() != nil {
				break
			}
			analysis, err := a.analyzeDocument(doc, features)
			collect(i, analysis, err)
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for index := range jobs {
					analysis, err := a.analyzeDocument(documents[index], features)
					collect(index, analysis, err)
				}
			}()
		}

	dispatch:
		for i := range documents {
			select {
			case <-ctx.Done():
				break dispatch
			case jobs <- i:
			}
		}
		close(jobs)
		wg.Wait()
	}

	analyses := make([]*Analysis, 0, len(documents))
	for _, analysis := range ordered {
		if analysis != nil {
			analyses = append(analyses, analysis)
		}
	}
	return analyses
}

func (a *Analyzer) effectiveWorkerCount(documents int) int {
	workers := a.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if workers > documents {
		workers = documents
	}
	return workers
}

// analyzeDocument runs the enabled per-document features. A panic in any
// component is converted into an error so one bad document cannot take down
// the run.
func (a *Analyzer) analyzeDocument(doc *interfaces.Document, features FeatureSet) (analysis *Analysis, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			analysis = nil
			err = fmt.Errorf("document analysis panic: %v", rec)
		}
	}()

	analysis = &Analysis{
		Document:     doc,
		LastAnalyzed: a.timestamp(),
	}

	if features.Has(FeatureTopicExtraction) {
		analysis.Topics = a.topics.ExtractTopics(doc.Content, doc.Metadata)
	}
	if features.Has(FeatureQualityScoring) {
		quality := a.quality.ScoreQuality(doc.Content, doc.Metadata)
		analysis.Quality = &quality
	}
	if features.Has(FeatureCrossLinking) || features.Has(FeatureDuplicateDetection) {
		analysis.Fingerprint = a.similarity.Fingerprint(doc.Content)
	}
	return analysis, nil
}

// analyzeRelationships runs the cross-document phase over the complete
// analysis set.
func (a *Analyzer) analyzeRelationships(analyses []*Analysis, features FeatureSet) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("relationship analysis panic: %v", rec)
		}
	}()

	if features.Has(FeatureCrossLinking) {
		for _, analysis := range analyses {
			analysis.Related = a.crossLinker.FindRelatedDocuments(analysis, analyses)
		}
	}
	if features.Has(FeatureDuplicateDetection) {
		similar := a.similarity.FindSimilarDocuments(analyses)
		for _, analysis := range analyses {
			analysis.Similar = similar[analysis.Document.Slug]
		}
	}
	return nil
}

// writeBack patches each document's metadata with its intelligence record.
// Write failures are counted and the run continues.
func (a *Analyzer) writeBack(ctx context.Context, analyses []*Analysis, records []map[string]any, summary *Summary) {
	for i, analysis := range analyses {
		patch := map[string]any{"intelligence": records[i]}
		if err := a.store.PatchMetadata(ctx, analysis.Document.Path, patch); err != nil {
			a.logger.Error("intelligence metadata write failed",
				"path", analysis.Document.Path,
				"error", err.Error(),
			)
			summary.Errors++
			continue
		}
		summary.Updated++
		a.logger.Debug("intelligence metadata updated", "path", analysis.Document.Path)
	}
}

// intelligenceRecord shapes the metadata block for one document. Only fields
// for enabled features appear; relationship fields additionally require the
// relationship phase to have completed, and are present but empty when a
// document simply has no matches.
func intelligenceRecord(analysis *Analysis, features FeatureSet, relationshipsDone bool) map[string]any {
	record := map[string]any{}
	if features.Has(FeatureTopicExtraction) {
		topics := analysis.Topics
		if topics == nil {
			topics = []string{}
		}
		record["extracted_topics"] = topics
	}
	if features.Has(FeatureQualityScoring) && analysis.Quality != nil {
		record["quality_metrics"] = *analysis.Quality
	}
	if features.Has(FeatureCrossLinking) || features.Has(FeatureDuplicateDetection) {
		record["content_fingerprint"] = analysis.Fingerprint
	}
	if features.Has(FeatureCrossLinking) && relationshipsDone {
		related := analysis.Related
		if related == nil {
			related = []RelatedDocument{}
		}
		record["related_documents"] = related
	}
	if features.Has(FeatureDuplicateDetection) && relationshipsDone {
		similar := analysis.Similar
		if similar == nil {
			similar = []SimilarDocument{}
		}
		record["similar_documents"] = similar
	}
	record["last_analyzed"] = analysis.LastAnalyzed
	return record
}

func (a *Analyzer) mergeIndex(analyses []*Analysis, records []map[string]any) error {
	if len(analyses) == 0 {
		return nil
	}
	entries := make([]indexEntry, len(analyses))
	for i, analysis := range analyses {
		entries[i] = indexEntry{
			Slug:         analysis.Document.Slug,
			Title:        analysis.Document.Title,
			Path:         analysis.Document.Path,
			Intelligence: records[i],
		}
	}
	if err := mergeIntelligenceIndex(a.indexPath(), entries); err != nil {
		return err
	}
	a.logger.Info("intelligence index updated",
		"path", a.indexPath(),
		"entries", len(entries),
	)
	return nil
}

// saveState records the content hash of every analyzed document, merged over
// the previous state so entries for skipped documents survive.
func (a *Analyzer) saveState(previous analysisState, included []*interfaces.Document) error {
	state := make(analysisState, len(previous)+len(included))
	for path, entry := range previous {
		state[path] = entry
	}
	stamp := a.timestamp()
	for _, doc := range included {
		state[doc.Path] = stateEntry{
			ContentHash:  contentHash(doc.Content),
			LastAnalyzed: stamp,
		}
	}
	return saveAnalysisState(a.statePath(), state)
}

func (a *Analyzer) statePath() string {
	if a.stateFile != "" {
		return a.stateFile
	}
	return filepath.Join(a.root, StateFileName)
}

func (a *Analyzer) indexPath() string {
	if a.indexFile != "" {
		return a.indexFile
	}
	return filepath.Join(a.root, IndexFileName)
}

func (a *Analyzer) timestamp() string {
	return a.now().UTC().Format(time.RFC3339)
}
