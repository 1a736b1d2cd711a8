package mirror

import (
	"fmt"

	"git.home.luguber.info/inful/charmrelease/internal/release"
)

// MirrorError reports a failed mirror step. The release it follows is not
// rolled back.
type MirrorError struct {
	Channel    release.Channel
	Repository string
	Step       string // clone, prepare, copy, summary, commit, hook
	Err        error
}

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror %s for channel %s to %s failed: %v", e.Step, e.Channel, e.Repository, e.Err)
}

func (e *MirrorError) Unwrap() error { return e.Err }
