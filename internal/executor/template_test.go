package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	vars := Vars{
		WorkingDir:    "/src/weebl",
		BuildPath:     "/src/weebl/builds/weebl",
		StoreLocation: "cs:~oil-charms/weebl",
		Artifact:      "cs:~oil-charms/weebl-42",
		Channel:       "edge",
	}

	got, err := Expand([]string{"charm", "push", "{{.BuildPath}}", "{{.StoreLocation}}"}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"charm", "push", "/src/weebl/builds/weebl", "cs:~oil-charms/weebl"}, got)

	got, err = Expand([]string{"charm", "release", "{{.Artifact}}", "--channel={{.Channel}}"}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"charm", "release", "cs:~oil-charms/weebl-42", "--channel=edge"}, got)
}

func TestExpand_Errors(t *testing.T) {
	_, err := Expand(nil, Vars{})
	assert.Error(t, err)

	_, err = Expand([]string{"charm", "{{.Unknown}}"}, Vars{})
	assert.Error(t, err)

	_, err = Expand([]string{"charm", "{{.Channel"}, Vars{})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]string{"charm", "grant", "{{.Artifact}}", "--channel", "{{.Channel}}", "everyone"}))
	assert.Error(t, Validate([]string{}))
	assert.Error(t, Validate([]string{"charm", "{{.Nope}}"}))
}
