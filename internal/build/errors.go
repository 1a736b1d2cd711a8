package build

import "fmt"

// BuildError reports a failed build, proof or push step.
type BuildError struct {
	Step    string // build, proof, push
	Command string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// MalformedStoreOutputError reports push output without a recognizable
// artifact identifier.
type MalformedStoreOutputError struct {
	Output string
}

func (e *MalformedStoreOutputError) Error() string {
	return fmt.Sprintf("could not find artifact identifier in store output %q", e.Output)
}
