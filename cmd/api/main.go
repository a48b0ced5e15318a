package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/account"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/session"

	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/security"
	timeProvider "github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger, err := logger.NewZapLoggerWithOptions(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() {
		_ = appLogger.Flush()
	}()

	for _, warning := range cfg.Warnings() {
		appLogger.Warn("Configuration warning", map[string]any{
			"warning": warning,
			"env":     cfg.Environment,
		})
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Application stopped with error", map[string]any{
			"error": err.Error(),
		})
		_ = appLogger.Flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *logger.ZapLogger) error {
	tp := timeProvider.NewRealTimeProvider()

	// Setup database configuration
	dbConfig, err := database.NewConfigFromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	// Connect to the database and bring the schema up to date
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(context.Background()); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Error("Failed to close database", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	if err := dbManager.Migrate(context.Background()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	dbManager.StartHealthMonitor(cfg.Database.HealthCheckInterval)

	// Initialize repositories
	userRepo := dbManager.UserRepository()
	transactionRepo := dbManager.TransactionRepository()
	sessionRepo := dbManager.SessionRepository()
	uow := dbManager.CreateUnitOfWork()

	// Initialize use cases
	maxAmount, err := cfg.Transaction.MaxAmountInCents()
	if err != nil {
		return err
	}
	retry := ledger.DefaultRetryConfig()
	retry.MaxRetries = cfg.Transaction.MaxRetries
	retry.RetryInterval = cfg.Transaction.RetryInterval
	retry.MaxInterval = cfg.Transaction.MaxInterval

	ledgerService := ledger.NewLedgerService(uow, userRepo, transactionRepo, tp, appLogger, ledger.Config{
		MaxAmountInCents: maxAmount,
		QueueSize:        cfg.Transaction.QueueSize,
		Retry:            retry,
	})
	accountUseCase := account.NewAccountUseCase(
		userRepo,
		transactionRepo,
		security.NewBcryptHasher(cfg.Security.BcryptCost),
		tp,
		appLogger,
	)
	sessionService := session.NewSessionService(
		sessionRepo,
		security.NewUUIDTokenGenerator(),
		tp,
		appLogger,
		cfg.Session.Policy(),
	)

	sweeper := session.NewSweeper(sessionService, appLogger, cfg.Database.QueryTimeout)
	sweeper.Start(cfg.Session.CleanupInterval)

	// Initialize HTTP handlers
	cookie := middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.SecureCookie,
		MaxAge: sessionService.Policy().AbsoluteTimeout,
	}
	handlers := routes.Handlers{
		Auth:    handler.NewAuthHandler(accountUseCase, sessionService, cookie, cfg.Security.UniformLoginErrors, appLogger),
		Account: handler.NewAccountHandler(accountUseCase, ledgerService, sessionService, cookie, appLogger),
		Pages:   handler.NewPageHandler(dbManager, tp, cfg.Database.QueryTimeout, appLogger),
	}

	// Initialize Gin router
	router := gin.New()
	if err := routes.SetupViews(router); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	routes.SetupMiddlewares(router, appLogger, tp, cfg.Server.RequestTimeout)
	routes.SetupRoutes(router, handlers, sessionService, cookie, appLogger)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":   server.Addr,
			"env":    cfg.Environment,
			"driver": dbManager.Driver(),
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", map[string]any{
			"signal": sig.String(),
		})
	case err, ok := <-serverErr:
		if ok {
			sweeper.Stop()
			_ = ledgerService.Shutdown(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	}

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then drain queued balance updates
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Shutting down transaction manager...", nil)
	if err := ledgerService.Shutdown(ctx); err != nil {
		appLogger.Error("Transaction manager did not drain in time", map[string]any{
			"error":          err.Error(),
			"active_workers": ledgerService.GetManager().ActiveWorkers(),
		})
	}

	sweeper.Stop()

	appLogger.Info("Server exited gracefully", nil)
	return nil
}
