package release

import "fmt"

// ReleaseError reports the channel and step (release or grant) that failed.
type ReleaseError struct {
	Channel Channel
	Step    string
	Command string
	Err     error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%s to channel %s failed: %v", e.Step, e.Channel, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }
