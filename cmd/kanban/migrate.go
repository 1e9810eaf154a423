package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/kanban/internal/config"
	"github.com/gosuda/kanban/internal/store/postgres"
)

var migrateHelp = map[string]string{
	"up":      "Apply all pending migrations",
	"down":    "Roll back the latest migration",
	"status":  "Show the state of every migration",
	"version": "Print the current schema version",
	"redo":    "Roll back and re-apply the latest migration",
	"reset":   "Roll back all migrations",
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, name := range postgres.MigrateCommands {
		cmd.AddCommand(&cobra.Command{
			Use:   name,
			Short: migrateHelp[name],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := config.LoadDatabase()
				if err != nil {
					return err
				}
				if err := postgres.Migrate(cmd.Context(), db.DSN(), name); err != nil {
					return err
				}
				log.Info().Str("command", name).Msg("migration finished")
				return nil
			},
		})
	}

	return cmd
}
