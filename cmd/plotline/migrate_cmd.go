package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/plotline-hq/plotline/migrations"
	"github.com/plotline-hq/plotline/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) > 0 {
				direction = args[0]
			}
			return migrate(direction)
		},
	}
	return cmd
}

func migrate(direction string) error {
	conf := configuration.Use()
	defer conf.Unload()

	db, err := sql.Open("pgx", conf.Database.ConnectionString())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(conf.Logger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch direction {
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	default:
		return goose.Up(db, ".")
	}
}
