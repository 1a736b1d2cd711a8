package preflight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/charmrelease/internal/executor"
)

func newChecker(f *executor.Fake) *Checker {
	return NewChecker(f, "/src/weebl", []string{"bzr", "status"}, []string{"charm", "whoami"})
}

func TestCheckTreeClean(t *testing.T) {
	f := executor.NewFake()
	require.NoError(t, newChecker(f).CheckTreeClean(context.Background()))

	calls := f.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/src/weebl", calls[0].Dir)
}

func TestCheckTreeClean_Dirty(t *testing.T) {
	for _, status := range []string{"modified:\n  reactive/weebl.py", "unknown:\n  notes.txt", "?"} {
		f := executor.NewFake().On("bzr status", status)
		err := newChecker(f).CheckTreeClean(context.Background())

		var dirty *DirtyWorkingTreeError
		require.True(t, errors.As(err, &dirty), "status %q", status)
		assert.Equal(t, status, dirty.Status)
	}
}

func TestCheckTreeClean_CommandFailure(t *testing.T) {
	f := executor.NewFake().Fail("bzr status", 3)
	err := newChecker(f).CheckTreeClean(context.Background())

	_, ok := executor.AsCommandError(err)
	assert.True(t, ok)
}

func TestCheckAuthenticated(t *testing.T) {
	f := executor.NewFake().On("charm whoami", "User: oil-ci-bot\nGroup membership: oil-charms, charmers")
	user, err := newChecker(f).CheckAuthenticated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "oil-ci-bot", user)
}

func TestCheckAuthenticated_NotLoggedIn(t *testing.T) {
	for _, out := range []string{"", "not logged into https://api.jujucharms.com/charmstore", "Group membership: none"} {
		f := executor.NewFake().On("charm whoami", out)
		_, err := newChecker(f).CheckAuthenticated(context.Background())

		var notAuth *NotAuthenticatedError
		require.True(t, errors.As(err, &notAuth), "output %q", out)
		assert.Equal(t, out, notAuth.Output)
	}
}

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"User: alice", "alice", true},
		{"user: bob  \n", "bob", true},
		{"Group membership: x\nUSER:   carol\nUser: dave", "carol", true},
		{"user:", "", false},
		{"nothing here", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseIdentity(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
