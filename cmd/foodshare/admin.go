package main

import (
	"context"
	"fmt"

	"foodshare/internal/db"
	"foodshare/internal/seed"
	"foodshare/internal/store"

	"github.com/urfave/cli/v2"
)

var adminCommand = &cli.Command{
	Name:  "admin",
	Usage: "Manage staff accounts",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create a verified staff account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
				&cli.StringFlag{Name: "password", EnvVars: []string{"FOODSHARE_ADMIN_PASSWORD"}, Required: true},
			},
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c.String("env-prefix"))
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				logger := newLogger(cfg)
				ctx := context.Background()

				pool, err := db.Connect(ctx, cfg)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer pool.Close()

				account, err := seed.Staff(ctx, store.NewAccountRepository(pool), c.String("username"), c.String("email"), c.String("password"))
				if err != nil {
					return fmt.Errorf("failed to create staff account: %w", err)
				}

				logger.WithField("account_id", account.ID).WithField("username", account.Username).Info("staff account created")
				return nil
			},
		},
	},
}
