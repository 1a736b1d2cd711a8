// Package collaborators wraps the host tools a charm deployment leans on:
// the package manager, the site admin command and the database utility.
//
// They are opaque. Only whether the tool exited zero is reported; an error
// is returned only when the tool could not be run at all.
package collaborators
