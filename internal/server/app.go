// Package server wires the culturehub server together: storage, the auth
// services, the mailer and blob store, and the HTTP and gRPC transports.
// It also handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/auth"
	"github.com/dmitrijs2005/culturehub/internal/server/blobs"
	"github.com/dmitrijs2005/culturehub/internal/server/config"
	"github.com/dmitrijs2005/culturehub/internal/server/mailer"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/culturehub/internal/server/rest"
	"github.com/dmitrijs2005/culturehub/internal/server/services"

	gs "github.com/dmitrijs2005/culturehub/internal/server/grpc"
)

const closeTimeout = 5 * time.Second

type App struct {
	config       *config.Config
	logger       logging.Logger
	repos        repomanager.RepositoryManager
	authService  *services.AuthService
	resetService *services.ResetService
	userService  *services.UserService
}

// NewApp connects to storage, applies migrations and builds the services.
// Any failure here is fatal for the process.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	hasher := auth.NewHasher(c.BcryptCost, int64(c.HashConcurrency))
	tokens := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenLifetime, time.Now)
	sender := mailer.New(c, logger)

	return &App{
		config:       c,
		logger:       logger,
		repos:        repos,
		authService:  services.NewAuthService(repos.Users(), hasher, tokens, logger),
		resetService: services.NewResetService(repos.Users(), hasher, sender, logger, c.ResetTokenLifetime, c.FrontendURL),
		userService:  services.NewUserService(repos.Users(), hasher, store, logger),
	}, nil
}

// newBlobStore uses S3 unless the server runs fully in memory.
func newBlobStore(ctx context.Context, c *config.Config) (blobs.Store, error) {
	if c.Storage == config.StorageMemory {
		return blobs.NewMemoryStore(c.AvatarBaseURL()), nil
	}
	return blobs.NewS3Store(ctx, c)
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
	s := rest.NewServer(rest.Options{
		Address:      app.config.HTTPAddr,
		CORSOrigins:  app.config.CORSOrigins,
		UniformReset: app.config.UniformResetResponse,
		Health:       app.repos.Ping,
	}, app.logger, app.authService, app.resetService, app.userService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.authService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives, ctx is cancelled or one of
// the servers fails, then releases storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.repos.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "storage close error", "error", err)
	}
	app.logger.Info(closeCtx, "App stopped")
}
