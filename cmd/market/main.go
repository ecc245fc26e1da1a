package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"marketplace/backend/internal/config"
	"marketplace/backend/internal/console"
	"marketplace/backend/internal/events"
	"marketplace/backend/internal/service"
	"marketplace/backend/internal/store"
	"marketplace/backend/internal/store/jsonfile"
	"marketplace/backend/internal/store/memory"
	pgstore "marketplace/backend/internal/store/postgres"
	"marketplace/backend/internal/verification"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("could not read .env")
	}
	cfg := config.Load()
	log := logrus.NewEntry(newLogger(cfg))

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("marketplace stopped")
	}
}

func run(cfg config.Config, log *logrus.Entry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closers := make([]func() error, 0, 3)
	defer func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				log.WithError(err).Warn("close error")
			}
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	repo, closeRepo, err := openRepository(startCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	if closeRepo != nil {
		closers = append(closers, closeRepo)
	}

	codeStore := verification.CodeStore(verification.NewMemoryCodeStore())
	if cfg.RedisAddr != "" {
		redisStore := verification.NewRedisCodeStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisStore.Ping(startCtx); err != nil {
			log.WithError(err).Warn("redis unavailable, keeping verification codes in memory")
			_ = redisStore.Close()
		} else {
			codeStore = redisStore
			closers = append(closers, redisStore.Close)
			log.Info("verification codes: redis")
		}
	}

	publisher := events.Publisher(events.NoopPublisher{})
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, log)
		if err != nil {
			log.WithError(err).Warn("nats unavailable, events disabled")
		} else {
			publisher = natsPublisher
			closers = append(closers, natsPublisher.Close)
			log.WithField("url", cfg.NATSURL).Info("events: nats")
		}
	}

	svc := service.New(repo, publisher, log)
	codes := verification.NewService(codeStore, verification.NewGenerator(cfg.CodeLength), cfg.CodeTTL(), log)
	shell := console.New(svc, codes, os.Stdin, os.Stdout, log)

	done := make(chan error, 1)
	go func() {
		done <- shell.Run(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		log.Info("interrupted")
		return nil
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openRepository never falls back from postgres: a configured database that
// cannot be reached is fatal.
func openRepository(ctx context.Context, cfg config.Config, log *logrus.Entry) (store.Repository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("repository: postgres")
		return pg, pg.Close, nil
	case config.DriverMemory:
		log.Info("repository: in-memory")
		return memory.New(), nil, nil
	default:
		fileStore, err := jsonfile.Open(cfg.DataFile, log)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("path", fileStore.Path()).Info("repository: json file")
		return fileStore, nil, nil
	}
}
