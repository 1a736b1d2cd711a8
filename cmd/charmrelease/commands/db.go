package commands

import (
	"git.home.luguber.info/inful/charmrelease/internal/collaborators"
	ferrors "git.home.luguber.info/inful/charmrelease/internal/foundation/errors"
)

// DBCmd implements the 'db' command.
type DBCmd struct {
	App  string   `arg:"" help:"Application whose database is targeted"`
	Args []string `arg:"" optional:"" passthrough:"" help:"Arguments passed to the database tool"`
}

func (d *DBCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	conn := collaborators.ConnectionInfo{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
	}
	if conn.Database == "" {
		conn.Database = d.App
	}

	var db collaborators.DBUtility = collaborators.CommandDB{Runner: g.Runner, Command: cfg.Commands.DB}
	ok, err := db.RunDBCommand(g.Ctx, d.App, conn, d.Args)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryCommand, "could not run the database tool").Build()
	}
	if !ok {
		return ferrors.NewError(ferrors.CategoryCommand, "database command for "+d.App+" failed").Build()
	}
	return nil
}
