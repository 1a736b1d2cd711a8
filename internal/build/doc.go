// Package build produces the one Artifact of a release run.
//
// The charm is built into the working context, optionally proofed, and pushed
// to the charm store. Build and push form a single stage: a built charm that
// was never pushed has no store identifier and nothing later can use it.
//
// The proof step is advisory. Its findings are logged and a non-zero exit is
// only a warning, but a proof tool that cannot be started fails the stage.
package build
