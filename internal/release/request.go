package release

import (
	"fmt"
	"strings"
)

// Channel is a named store publication track. The set is open; stable,
// candidate, beta and edge are the conventional values.
type Channel string

const (
	Stable    Channel = "stable"
	Candidate Channel = "candidate"
	Beta      Channel = "beta"
	Edge      Channel = "edge"
)

// IsConventional reports whether c is one of the store's well-known channels.
func (c Channel) IsConventional() bool {
	switch c {
	case Stable, Candidate, Beta, Edge:
		return true
	}
	return false
}

// Request is the ordered list of channels to release to. An empty Request
// means build only.
type Request struct {
	Channels []Channel
}

// NewRequest builds a Request from command-line arguments, keeping their order.
func NewRequest(args []string) (Request, error) {
	seen := make(map[Channel]bool, len(args))
	channels := make([]Channel, 0, len(args))
	for _, arg := range args {
		c := Channel(strings.TrimSpace(arg))
		if c == "" {
			return Request{}, fmt.Errorf("empty channel name")
		}
		if seen[c] {
			return Request{}, fmt.Errorf("channel %q requested more than once", c)
		}
		seen[c] = true
		channels = append(channels, c)
	}
	return Request{Channels: channels}, nil
}

// Empty reports whether no channel was requested.
func (r Request) Empty() bool { return len(r.Channels) == 0 }

// Join renders channels as "a, b, c".
func Join(channels []Channel) string {
	parts := make([]string, len(channels))
	for i, c := range channels {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
