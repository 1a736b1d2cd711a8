package executor

import (
	"fmt"
	"strings"
	"text/template"
)

// Vars are the values available to argv templates, e.g. "{{.BuildPath}}".
type Vars struct {
	WorkingDir    string
	BuildPath     string
	StoreLocation string
	Artifact      string
	Channel       string
}

// Expand renders every element of argv as a template against vars.
func Expand(argv []string, vars Vars) ([]string, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command template")
	}
	out := make([]string, 0, len(argv))
	for i, arg := range argv {
		if !strings.Contains(arg, "{{") {
			out = append(out, arg)
			continue
		}
		tmpl, err := parseArg(i, arg)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, vars); err != nil {
			return nil, fmt.Errorf("expand argument %d %q: %w", i, arg, err)
		}
		out = append(out, b.String())
	}
	return out, nil
}

// Validate checks that every element of argv parses as a template.
func Validate(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command template")
	}
	for i, arg := range argv {
		if _, err := parseArg(i, arg); err != nil {
			return err
		}
	}
	_, err := Expand(argv, Vars{})
	return err
}

func parseArg(i int, arg string) (*template.Template, error) {
	tmpl, err := template.New(fmt.Sprintf("arg%d", i)).Option("missingkey=error").Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("parse argument %d %q: %w", i, arg, err)
	}
	return tmpl, nil
}
