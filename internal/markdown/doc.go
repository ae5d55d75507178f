// Package markdown handles the file-level concerns of the pipeline: source
// discovery, front matter parsing and serialization, MDX cleanup transforms,
// structural content stats, and the document store the intelligence layer
// reads from and patches.
package markdown
