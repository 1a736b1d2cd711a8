// Package workspace owns the transient directories of one pipeline run.
//
// A Context is derived from the charm checkout: the builder writes into
// BuildDir, charm layers and the mirror scratch checkout land in DepsDir.
// Neither is a store of record. Cleanup removes both and is safe to call on
// every exit path, including when the directories were never created.
package workspace
