// Package app wires configuration, persistence, storage and the HTTP layer
// into one application value built at startup.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/config"
	"github.com/arzan03/PalavraDoDia/internal/db"
	"github.com/arzan03/PalavraDoDia/internal/handlers"
	"github.com/arzan03/PalavraDoDia/internal/metrics"
	"github.com/arzan03/PalavraDoDia/internal/services"
	"github.com/arzan03/PalavraDoDia/internal/storage"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Auth    *services.AuthService
	Entries *services.EntryService

	mongo *mongo.Client
	http  *fiber.App
}

type repositories struct {
	accounts services.AccountRepository
	entries  services.EntryRepository
}

// New connects to persistence, bootstraps the admin account and builds the
// HTTP application.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, Metrics: metrics.New()}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		return nil, err
	}

	images, err := storage.NewMinioStore(cfg.Minio, log)
	if err != nil {
		a.closeMongo()
		return nil, err
	}
	bucketCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	if err := images.EnsureBucket(bucketCtx); err != nil {
		log.Warn("image storage unavailable", slog.Any("error", err))
	}
	cancel()

	a.Auth = services.NewAuthService(repos.accounts, cfg.JWTSecret, cfg.JWTExpire, log)
	a.Entries = services.NewEntryService(repos.entries, images, cfg.Minio.MaxImageSize, log)

	created, err := a.Auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		a.closeMongo()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("admin account created", slog.String("email", cfg.AdminEmail))
	}

	a.http = handlers.NewApp(handlers.Deps{
		Auth:          a.Auth,
		Entries:       a.Entries,
		Metrics:       a.Metrics,
		Log:           log,
		AccessLog:     os.Stdout,
		PublicDir:     cfg.PublicDir,
		BodyLimit:     int(cfg.Minio.MaxImageSize) + 1<<20,
		SecureCookies: !cfg.Development(),
	})
	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	if a.Config.StorageDriver == config.DriverMemory {
		a.Log.Warn("using in-memory storage; data is lost on restart")
		return repositories{
			accounts: db.NewMemoryAccountRepository(),
			entries:  db.NewMemoryEntryRepository(),
		}, nil
	}

	client, err := db.ConnectMongoDB(ctx, a.Config.MongoURI, a.Config.DBTimeout, a.Log)
	if err != nil {
		return repositories{}, err
	}
	a.mongo = client

	database := client.Database(a.Config.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		a.closeMongo()
		return repositories{}, err
	}

	return repositories{
		accounts: db.NewMongoAccountRepository(database, a.Config.DBTimeout),
		entries:  db.NewMongoEntryRepository(database, a.Config.DBTimeout),
	}, nil
}

// HTTP exposes the Fiber application, mainly for tests.
func (a *App) HTTP() *fiber.App {
	return a.http
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.Config.Port
		a.Log.Info("starting HTTP server", slog.String("address", addr))
		errCh <- a.http.Listen(addr)
	}()

	var runErr error
	select {
	case err := <-errCh:
		runErr = err
	case <-ctx.Done():
		a.Log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.http.ShutdownWithContext(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("mongodb disconnect: %w", err))
		}
	}
	return runErr
}

func (a *App) closeMongo() {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(context.Background())
	}
}
