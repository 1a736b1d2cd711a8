package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/charmrelease/internal/executor"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
)

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Charm.Name) == "" {
		return ferrors.ConfigError("charm.name is required").Build()
	}
	if strings.TrimSpace(c.Charm.StoreLocation) == "" {
		return ferrors.ConfigError("charm.store_location is required").Build()
	}
	if err := validateDirName("workspace.build_dir", c.Workspace.BuildDir); err != nil {
		return err
	}
	if err := validateDirName("workspace.deps_dir", c.Workspace.DepsDir); err != nil {
		return err
	}
	if c.Workspace.BuildDir == c.Workspace.DepsDir {
		return ferrors.ConfigError("workspace.build_dir and workspace.deps_dir must differ").Build()
	}

	commands := map[string][]string{
		"status":    c.Commands.Status,
		"whoami":    c.Commands.Whoami,
		"build":     c.Commands.Build,
		"proof":     c.Commands.Proof,
		"push":      c.Commands.Push,
		"release":   c.Commands.Release,
		"grant":     c.Commands.Grant,
		"provision": c.Commands.Provision,
		"admin":     c.Commands.Admin,
		"db":        c.Commands.DB,
	}
	for name, argv := range commands {
		if err := executor.Validate(argv); err != nil {
			return ferrors.ConfigError(fmt.Sprintf("commands.%s is invalid", name)).
				WithCause(err).
				Build()
		}
	}

	if len(c.Mirror.HookCommand) > 0 {
		if err := executor.Validate(c.Mirror.HookCommand); err != nil {
			return ferrors.ConfigError("mirror.hook_command is invalid").WithCause(err).Build()
		}
	}

	seen := make(map[string]bool, len(c.Mirrors))
	for i, m := range c.Mirrors {
		if m.Channel == "" || m.Repository == "" {
			return ferrors.ConfigError(fmt.Sprintf("mirrors[%d] needs both channel and repository", i)).Build()
		}
		if seen[m.Channel] {
			return ferrors.ConfigError(fmt.Sprintf("mirrors: channel %q configured twice", m.Channel)).Build()
		}
		seen[m.Channel] = true
		if err := validateAuth(i, m.Auth); err != nil {
			return err
		}
	}
	return nil
}

// validateDirName rejects names that would let cleanup escape the working directory.
func validateDirName(field, name string) error {
	clean := filepath.Clean(name)
	if name == "" || clean == "." || clean == ".." || filepath.IsAbs(name) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return ferrors.ConfigError(fmt.Sprintf("%s must be a relative directory inside the working directory", field)).
			WithContext(ferrors.ContextPath, name).
			Build()
	}
	return nil
}

func validateAuth(i int, a *AuthConfig) error {
	if a.IsZero() {
		return nil
	}
	var problem string
	switch a.Type {
	case AuthTypeSSH:
	case AuthTypeToken:
		if a.Token == "" {
			problem = "token authentication requires a token"
		}
	case AuthTypeBasic:
		if a.Username == "" || a.Password == "" {
			problem = "basic authentication requires username and password"
		}
	default:
		problem = fmt.Sprintf("unsupported auth type %q", a.Type)
	}
	if problem != "" {
		return ferrors.ConfigError(fmt.Sprintf("mirrors[%d].auth: %s", i, problem)).Build()
	}
	return nil
}
