package build

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifactID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"id first", "weebl-42 pushed", "weebl-42"},
		{"labelled url", "url: cs:~oil-charms/weebl-42\nchannel: unpublished", "cs:~oil-charms/weebl-42"},
		{"leading blank lines", "\n\n  url: cs:~oil-charms/weebl-7  \n", "cs:~oil-charms/weebl-7"},
		{"extra tokens", "cs:~oil-charms/weebl-3 pushed to store", "cs:~oil-charms/weebl-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArtifactID(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArtifactID_Malformed(t *testing.T) {
	for _, output := range []string{"", "   \n\n", "weebl-42", "url:\nweebl-42 pushed"} {
		_, err := ParseArtifactID(output)

		var malformed *MalformedStoreOutputError
		require.True(t, errors.As(err, &malformed), "output %q", output)
		assert.Equal(t, output, malformed.Output)
	}
}
