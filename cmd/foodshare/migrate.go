package main

import (
	"fmt"

	"foodshare/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Manage the database schema",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: withMigrator(func(_ *cli.Context, m *db.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				logrus.Info("migrations applied")
				return nil
			}),
		},
		{
			Name:  "down",
			Usage: "Roll back migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Number of migrations to roll back",
					Value: 1,
				},
			},
			Action: withMigrator(func(c *cli.Context, m *db.Migrator) error {
				if err := m.Down(c.Int("steps")); err != nil {
					return err
				}
				logrus.WithField("steps", c.Int("steps")).Info("migrations rolled back")
				return nil
			}),
		},
		{
			Name:  "version",
			Usage: "Print the current schema version",
			Action: withMigrator(func(_ *cli.Context, m *db.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				fmt.Printf("version %d (dirty: %t)\n", version, dirty)
				return nil
			}),
		},
	},
}

func withMigrator(fn func(*cli.Context, *db.Migrator) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		m, err := db.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close migrator")
			}
		}()

		return fn(c, m)
	}
}
