package commands

import (
	"fmt"

	"git.home.luguber.info/inful/charmrelease/internal/config"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.configPath()
	fmt.Fprintf(g.Out, "Writing configuration to %s\n", path)
	if err := config.Init(path, i.Force); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, err.Error()).Build()
	}
	fmt.Fprintln(g.Out, "initialized successfully")
	return nil
}
