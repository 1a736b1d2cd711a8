package preflight

import "fmt"

// DirtyWorkingTreeError reports uncommitted changes in the charm checkout.
type DirtyWorkingTreeError struct {
	Status string
}

func (e *DirtyWorkingTreeError) Error() string {
	return fmt.Sprintf("working tree has uncommitted changes:\n%s", e.Status)
}

// NotAuthenticatedError reports that the store client has no logged-in user.
type NotAuthenticatedError struct {
	// Output is the raw identity query output, shown to the operator.
	Output string
}

func (e *NotAuthenticatedError) Error() string {
	if e.Output == "" {
		return "not logged in to the charm store"
	}
	return fmt.Sprintf("not logged in to the charm store: %s", e.Output)
}
