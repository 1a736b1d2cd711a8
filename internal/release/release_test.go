package release

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/charmrelease/internal/build"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
)

var artifact = build.Artifact{ID: "cs:~oil-charms/weebl-42", Path: "/src/weebl/builds/weebl"}

func newStage(f *executor.Fake) *Stage {
	return NewStage(f, Options{
		ReleaseCommand: []string{"charm", "release", "{{.Artifact}}", "--channel", "{{.Channel}}"},
		GrantCommand:   []string{"charm", "grant", "{{.Artifact}}", "--channel", "{{.Channel}}", "everyone"},
		Dir:            "/src/weebl",
	})
}

func TestRelease_OrderFollowsRequest(t *testing.T) {
	f := executor.NewFake()
	got, err := newStage(f).Release(context.Background(), artifact, []Channel{Edge, Stable, Beta})
	require.NoError(t, err)
	assert.Equal(t, []Channel{Edge, Stable, Beta}, got)

	assert.Equal(t, []string{
		"charm release cs:~oil-charms/weebl-42 --channel edge",
		"charm grant cs:~oil-charms/weebl-42 --channel edge everyone",
		"charm release cs:~oil-charms/weebl-42 --channel stable",
		"charm grant cs:~oil-charms/weebl-42 --channel stable everyone",
		"charm release cs:~oil-charms/weebl-42 --channel beta",
		"charm grant cs:~oil-charms/weebl-42 --channel beta everyone",
	}, f.CommandLines())
}

func TestRelease_Empty(t *testing.T) {
	f := executor.NewFake()
	got, err := newStage(f).Release(context.Background(), artifact, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, f.Calls())
}

func TestRelease_FailFast(t *testing.T) {
	f := executor.NewFake().Fail("charm release cs:~oil-charms/weebl-42 --channel edge", 1)
	got, err := newStage(f).Release(context.Background(), artifact, []Channel{Stable, Edge, Beta})
	require.Error(t, err)
	assert.Nil(t, got)

	var relErr *ReleaseError
	require.True(t, errors.As(err, &relErr))
	assert.Equal(t, Edge, relErr.Channel)
	assert.Equal(t, "release", relErr.Step)

	assert.Len(t, f.CallsWithPrefix("charm grant cs:~oil-charms/weebl-42 --channel stable"), 1)
	assert.Empty(t, f.CallsWithPrefix("charm grant cs:~oil-charms/weebl-42 --channel edge"))
	assert.Empty(t, f.CallsWithPrefix("charm release cs:~oil-charms/weebl-42 --channel beta"))
}

func TestRelease_GrantFailure(t *testing.T) {
	f := executor.NewFake().Fail("charm grant", 4)
	_, err := newStage(f).Release(context.Background(), artifact, []Channel{Stable})

	var relErr *ReleaseError
	require.True(t, errors.As(err, &relErr))
	assert.Equal(t, Stable, relErr.Channel)
	assert.Equal(t, "grant", relErr.Step)

	cmdErr, ok := executor.AsCommandError(err)
	require.True(t, ok)
	assert.Equal(t, 4, cmdErr.ExitCode)
}

func TestNewRequest(t *testing.T) {
	req, err := NewRequest([]string{"stable", "edge"})
	require.NoError(t, err)
	assert.Equal(t, []Channel{Stable, Edge}, req.Channels)
	assert.False(t, req.Empty())

	req, err = NewRequest(nil)
	require.NoError(t, err)
	assert.True(t, req.Empty())

	_, err = NewRequest([]string{"stable", ""})
	require.Error(t, err)
	_, err = NewRequest([]string{"stable", "stable"})
	require.Error(t, err)
}

func TestChannel(t *testing.T) {
	assert.True(t, Channel("candidate").IsConventional())
	assert.False(t, Channel("nightly").IsConventional())
	assert.Equal(t, "stable, edge", Join([]Channel{Stable, Edge}))
	assert.Equal(t, "", Join(nil))
}
