// Package journal keeps a local history of release runs in SQLite.
//
// Each pipeline run appends one Entry when it finishes, successful or not.
// The journal is bookkeeping only; nothing in the pipeline reads it back.
package journal
