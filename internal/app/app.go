package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bookshelf/internal/api"
	"bookshelf/internal/books"
	"bookshelf/internal/config"
	"bookshelf/internal/notify"
	"bookshelf/internal/storage"
	"bookshelf/internal/storage/memory"
)

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	db     storage.Storage
	store  *books.Store
	server *http.Server
}

// New loads the environment and creates a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return NewWithConfig(cfg, logger)
}

// NewWithConfig wires the application from an explicit configuration
func NewWithConfig(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{config: cfg, logger: logger}

	logger.Info("Starting Bookshelf API...")

	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// initStore creates the in-memory database and the book store on top of it
func (a *App) initStore() error {
	a.db = memory.NewDB()

	var notifier notify.Notifier = notify.Nop{}
	if a.config.TelegramToken != "" {
		telegram, err := notify.NewTelegram(a.config.TelegramToken, a.config.TelegramNotifyChatID, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create Telegram notifier: %w", err)
		}
		notifier = telegram
	}

	a.store = books.NewStore(a.db, a.logger, books.WithNotifier(notifier))

	if a.config.SeedSampleBooks {
		if err := books.Seed(context.Background(), a.store, books.SampleBooks()); err != nil {
			return fmt.Errorf("failed to seed sample books: %w", err)
		}
		a.logger.Info("Seeded sample books", zap.Int("count", len(books.SampleBooks())))
	}

	return nil
}

// initHTTPServer builds the HTTP server; it is started by Run
func (a *App) initHTTPServer() {
	httpServer := api.NewHTTPServer(a.store, a.logger, a.config.CORSOrigins)

	a.server = &http.Server{
		Addr:         a.config.Addr(),
		Handler:      httpServer.Handler(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
		ErrorLog:     zap.NewStdLog(a.logger),
	}
}

// Handler returns the HTTP handler of the application
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is canceled, then shuts down
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.server.Addr, err)
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down...")
		return a.Shutdown()
	case err := <-errChan:
		if err != nil {
			_ = a.Shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	// Shutdown HTTP server gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	// Drop the in-memory database
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return nil
}
