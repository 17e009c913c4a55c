// Package server initializes and runs the postkeeper API server.
// It opens the database, applies migrations, selects the asset backend,
// wires services to the HTTP transport and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/postkeeper/internal/logging"
	"github.com/dmitrijs2005/postkeeper/internal/server/assets"
	"github.com/dmitrijs2005/postkeeper/internal/server/auth"
	"github.com/dmitrijs2005/postkeeper/internal/server/config"
	"github.com/dmitrijs2005/postkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/postkeeper/internal/server/rest"
	"github.com/dmitrijs2005/postkeeper/internal/server/services"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newAssetStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("asset store init error: %w", err)
	}

	codec := auth.NewCodec([]byte(c.SecretKey))
	sink := assets.NewSink(c.StagingDir, c.MaxUploadBytes, store, logger)

	us := services.NewUserService(db, rm, codec)
	ps := services.NewPostService(db, rm, sink, logger)

	srv := rest.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ps, codec, c.MaxUploadBytes, c.ShutdownTimeout)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// newAssetStore builds the permanent asset store selected by AssetBackend.
func newAssetStore(ctx context.Context, c *config.Config) (assets.Store, error) {
	switch c.AssetBackend {
	case config.AssetBackendLocal, "":
		return assets.NewLocalStore(c.AssetDir)
	case config.AssetBackendS3:
		return assets.NewS3Store(ctx, assets.S3Config{
			User:     c.S3RootUser,
			Password: c.S3RootPassword,
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Endpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown asset backend %q", c.AssetBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
