package executor

import (
	"context"
	"strings"
	"sync"
)

// Response scripts what a Fake returns for matching commands.
type Response struct {
	Output   string
	ExitCode int
	// Effect runs before the response is returned, e.g. to create the
	// directories a real builder would produce.
	Effect func(cmd Command) error
}

type fakeRule struct {
	prefix   string
	response Response
}

// Fake is a scripted Runner for tests. Commands are matched by the longest
// registered prefix of their space-joined argv, later registrations winning
// ties; unmatched commands succeed with empty output.
type Fake struct {
	mu    sync.Mutex
	rules []fakeRule
	calls []Command
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// On registers the output returned for commands starting with prefix.
func (f *Fake) On(prefix, output string) *Fake {
	return f.Respond(prefix, Response{Output: output})
}

// Fail makes commands starting with prefix exit with code.
func (f *Fake) Fail(prefix string, code int) *Fake {
	return f.Respond(prefix, Response{ExitCode: code})
}

// Respond registers a full Response for commands starting with prefix.
func (f *Fake) Respond(prefix string, r Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{prefix: prefix, response: r})
	return f
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, cmd Command) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	r, _ := f.match(cmd.String())
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &ExternalCommandError{Args: cmd.Args, ExitCode: -1, Err: err}
	}
	if r.Effect != nil {
		if err := r.Effect(cmd); err != nil {
			return "", &ExternalCommandError{Args: cmd.Args, ExitCode: -1, Err: err}
		}
	}
	if r.ExitCode != 0 {
		return r.Output, &ExternalCommandError{Args: cmd.Args, ExitCode: r.ExitCode, Stderr: "scripted failure"}
	}
	return strings.TrimSpace(r.Output), nil
}

func (f *Fake) match(line string) (Response, bool) {
	best := -1
	var resp Response
	for _, rule := range f.rules {
		if strings.HasPrefix(line, rule.prefix) && len(rule.prefix) >= best {
			best = len(rule.prefix)
			resp = rule.response
		}
	}
	return resp, best >= 0
}

// Calls returns every command run so far, in order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.calls...)
}

// CallsWithPrefix returns the commands whose argv starts with prefix.
func (f *Fake) CallsWithPrefix(prefix string) []Command {
	var out []Command
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.String(), prefix) {
			out = append(out, c)
		}
	}
	return out
}

// CommandLines returns every command run so far as space-joined strings.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
