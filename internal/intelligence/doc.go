// Package intelligence runs the content analysis pass over an emitted
// document collection: topic extraction, quality scoring, similarity and
// duplicate detection, and cross-link discovery. The analyzer drives the four
// components in two phases (per-document, then cross-document), folds results
// back into each document's metadata, maintains a collection-wide index, and
// tracks content hashes so unchanged documents can be skipped on incremental
// runs.
package intelligence
