package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/charmrelease/internal/collaborators"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
)

// ProvisionCmd implements the 'provision' command.
type ProvisionCmd struct {
	Packages []string `arg:"" optional:"" help:"Packages to install (default: provision.packages from the configuration)"`
}

func (p *ProvisionCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	names := p.Packages
	if len(names) == 0 {
		names = cfg.Provision.Packages
	}
	if len(names) == 0 {
		fmt.Fprintln(g.Out, "Nothing to install.")
		return nil
	}

	var prov collaborators.Provisioner = collaborators.CommandProvisioner{Runner: g.Runner, Command: cfg.Commands.Provision}
	ok, err := prov.EnsureInstalled(g.Ctx, names)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryCommand, "could not run the package installer").Build()
	}
	if !ok {
		return ferrors.NewError(ferrors.CategoryCommand, "could not install "+strings.Join(names, ", ")).Build()
	}
	fmt.Fprintf(g.Out, "Installed %s.\n", strings.Join(names, ", "))
	return nil
}
