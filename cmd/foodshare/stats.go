package main

import (
	"context"
	"fmt"

	"foodshare/internal/db"
	"foodshare/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Print account, donation and food item totals",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		repo := store.NewStatsRepository(pool)

		accounts, err := repo.AccountCounts(ctx)
		if err != nil {
			return err
		}
		statuses, err := repo.DonationStatusCounts(ctx, "")
		if err != nil {
			return err
		}
		items, err := repo.FoodItemTotals(ctx)
		if err != nil {
			return err
		}
		categories, err := repo.CategoryCounts(ctx)
		if err != nil {
			return err
		}

		_, err = pp.Println(map[string]any{
			"accounts":   accounts,
			"donations":  statuses,
			"food_items": items,
			"categories": categories,
		})
		return err
	},
}
