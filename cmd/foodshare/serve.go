package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodshare/internal/db"
	"foodshare/internal/jobs"
	"foodshare/internal/mail"
	"foodshare/internal/metrics"
	"foodshare/internal/realtime"
	"foodshare/internal/server"
	"foodshare/internal/storage"
	"foodshare/internal/store"
	"foodshare/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server and housekeeping jobs",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx.String("env-prefix"))
	if err != nil {
		return err
	}

	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	photos, mediaDir, err := newStorage(ctx, config, logger)
	if err != nil {
		return err
	}

	accountRepo := store.NewAccountRepository(pool)
	statsRepo := store.NewStatsRepository(pool)

	m := metrics.New()
	hub := realtime.NewHub(logger)

	srv, err := server.New(config, logger, server.Deps{
		Accounts:  accountRepo,
		Donations: store.NewDonationRepository(pool),
		FoodItems: store.NewFoodItemRepository(pool),
		Stats:     statsRepo,
		DB:        pool,
		Storage:   photos,
		Mailer:    mail.NewLogMailer(logger),
		Hub:       hub,
		Metrics:   m,
		MediaDir:  mediaDir,
	})
	if err != nil {
		return err
	}

	runner := jobs.NewRunner(logger, config, accountRepo, statsRepo, m)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}

// newStorage builds the configured photo store. For the filesystem driver
// it also returns the directory the server should expose under /media/.
func newStorage(ctx context.Context, config *types.Config, logger *logrus.Logger) (storage.Storage, string, error) {
	switch config.StorageDriver {
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, "", err
		}

		ttl := time.Duration(config.PhotoURLTTLSec) * time.Second
		logger.WithField("bucket", config.S3BucketName).Info("storing photos in s3")
		return storage.NewS3Store(s3.NewFromConfig(awsConfig), config.S3BucketName, ttl), "", nil
	default:
		fs, err := storage.NewFileStore(config.MediaRoot, "/media")
		if err != nil {
			return nil, "", err
		}

		logger.WithField("root", fs.Root()).Info("storing photos on local disk")
		return fs, fs.Root(), nil
	}
}
