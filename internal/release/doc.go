// Package release publishes a pushed artifact to store channels and grants
// public read access on each.
//
// Channels are processed strictly in request order and the first failure
// stops the stage. There is no rollback: channels released before the
// failure stay released.
package release
