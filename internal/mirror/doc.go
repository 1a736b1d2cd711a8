// Package mirror commits the exact build output of a released channel to a
// secondary git repository.
//
// The mirror repository is cloned into a scratch directory, its .git
// directory is copied into the build output so that the output becomes a
// working copy of the mirror history, and everything is committed under the
// summary line of the mirror's latest commit. Propagating that commit
// upstream is left to a Hook.
//
// Only the first released channel with a configured target is mirrored.
package mirror
