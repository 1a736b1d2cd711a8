package commands

import (
	"git.home.luguber.info/inful/charmrelease/internal/collaborators"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
)

// AdminCmd implements the 'admin' command.
type AdminCmd struct {
	Args []string `arg:"" passthrough:"" help:"Arguments passed to the admin command"`
}

func (a *AdminCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	var admin collaborators.AdminConfigurator = collaborators.CommandAdmin{
		Runner:  g.Runner,
		Command: cfg.Commands.Admin,
		Dir:     root.Workdir,
	}
	ok, err := admin.RunAdminCommand(g.Ctx, a.Args)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryCommand, "could not run the admin command").Build()
	}
	if !ok {
		return ferrors.NewError(ferrors.CategoryCommand, "admin command failed").Build()
	}
	return nil
}
