package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

var defaultAppliers = []DefaultApplier{
	&CharmDefaultApplier{},
	&WorkspaceDefaultApplier{},
	&CommandsDefaultApplier{},
	&MirrorDefaultApplier{},
	&LoggingDefaultApplier{},
	&NotifyDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, a := range defaultAppliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// CharmDefaultApplier handles Charm configuration defaults.
type CharmDefaultApplier struct{}

func (c *CharmDefaultApplier) Domain() string { return "charm" }

func (c *CharmDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Charm.Name == "" {
		cfg.Charm.Name = "weebl"
	}
	if cfg.Charm.StoreLocation == "" {
		cfg.Charm.StoreLocation = "cs:~oil-charms/" + cfg.Charm.Name
	}
	return nil
}

// WorkspaceDefaultApplier handles Workspace configuration defaults.
type WorkspaceDefaultApplier struct{}

func (w *WorkspaceDefaultApplier) Domain() string { return "workspace" }

func (w *WorkspaceDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Workspace.BuildDir == "" {
		cfg.Workspace.BuildDir = "builds"
	}
	if cfg.Workspace.DepsDir == "" {
		cfg.Workspace.DepsDir = "deps"
	}
	return nil
}

// CommandsDefaultApplier fills in the charm tool command lines.
type CommandsDefaultApplier struct{}

func (c *CommandsDefaultApplier) Domain() string { return "commands" }

func (c *CommandsDefaultApplier) ApplyDefaults(cfg *Config) error {
	cmds := &cfg.Commands
	setDefault(&cmds.Status, "bzr", "status")
	setDefault(&cmds.Whoami, "charm", "whoami")
	setDefault(&cmds.Build, "charm", "build", "-o", "{{.WorkingDir}}")
	setDefault(&cmds.Proof, "charm", "proof", "{{.BuildPath}}")
	setDefault(&cmds.Push, "charm", "push", "{{.BuildPath}}", "{{.StoreLocation}}")
	setDefault(&cmds.Release, "charm", "release", "{{.Artifact}}", "--channel", "{{.Channel}}")
	setDefault(&cmds.Grant, "charm", "grant", "{{.Artifact}}", "--channel", "{{.Channel}}", "everyone")
	setDefault(&cmds.Provision, "sudo", "apt-get", "install", "-y")
	setDefault(&cmds.Admin, "python3", "manage.py")
	setDefault(&cmds.DB, "pg_dump")
	return nil
}

func setDefault(dst *[]string, argv ...string) {
	if len(*dst) == 0 {
		*dst = argv
	}
}

// MirrorDefaultApplier handles Mirror configuration defaults.
type MirrorDefaultApplier struct{}

func (m *MirrorDefaultApplier) Domain() string { return "mirror" }

func (m *MirrorDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Mirror.AuthorName == "" {
		cfg.Mirror.AuthorName = "charmrelease"
	}
	if cfg.Mirror.AuthorEmail == "" {
		cfg.Mirror.AuthorEmail = "charmrelease@localhost"
	}
	return nil
}

// LoggingDefaultApplier normalizes logging settings.
type LoggingDefaultApplier struct{}

func (l *LoggingDefaultApplier) Domain() string { return "logging" }

func (l *LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

// NotifyDefaultApplier handles Notify configuration defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.URL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "charmrelease." + cfg.Charm.Name
	}
	return nil
}
