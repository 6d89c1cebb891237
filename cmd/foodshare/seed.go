package main

import (
	"context"
	"fmt"

	"foodshare/internal/db"
	"foodshare/internal/seed"
	"foodshare/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo donors and donations",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "password",
			Usage: "Password given to every demo donor",
			Value: "Donate!2024",
		},
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

		logger.Info("Connected to database")

		err = seed.Demo(ctx, logger, store.NewAccountRepository(pool), store.NewDonationRepository(pool), c.String("password"))
		if err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}

		logger.Info("Demo data seeded successfully")

		return nil
	},
}
