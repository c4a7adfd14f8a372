// Package container wires the application together: database, repositories,
// services, event dispatcher, and the HTTP server, with ordered startup and
// reverse-order teardown.
package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/application/service"
	"github.com/crestline/roofops-commissions/internal/config"
	"github.com/crestline/roofops-commissions/internal/infrastructure/external/directory"
	"github.com/crestline/roofops-commissions/internal/infrastructure/notify"
	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/repository"
	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/crestline/roofops-commissions/internal/interfaces/http"
	"github.com/crestline/roofops-commissions/internal/statement"
	"github.com/crestline/roofops-commissions/pkg/database"
)

// Container manages all application dependencies and lifecycle.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	database     *database.DB
	db           *sqlite.DB
	repositories *RepositoryBundle
	directory    *directory.ManagerDirectory
	notifier     *notify.WebhookNotifier

	// Application
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	server *httpserver.Server

	// Lifecycle
	mu     sync.Mutex
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Commission port.CommissionRepository
	StatusLog  port.StatusLogRepository
	Draw       port.DrawRepository
	Override   port.OverrideRepository
	Statement  *repository.StatementRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Commission service.CommissionService
	Approval   service.ApprovalService
	Draw       service.DrawService
	Override   service.OverrideService
	Statement  *statement.Service
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Start to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// database and repositories, external adapters, dispatcher, services, and
// finally the HTTP server.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.initDispatcher()

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.initServer()
	c.logger.Info("HTTP server ready",
		zap.String("host", c.config.Server.Host),
		zap.Int("port", c.config.Server.Port))

	c.ready.Store(true)
	return nil
}

func (c *Container) initDatabase() error {
	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}
	c.database = db

	if c.config.Database.MigrationsDir != "" {
		migrator := database.NewMigrator(db, c.logger)
		if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	c.db = sqlite.NewDB(db.DB, c.logger)
	c.repositories = &RepositoryBundle{
		Commission: repository.NewCommissionRepository(c.db, c.logger),
		StatusLog:  repository.NewStatusLogRepository(c.db, c.logger),
		Draw:       repository.NewDrawRepository(c.db, c.logger),
		Override:   repository.NewOverrideRepository(c.db, c.logger),
		Statement:  repository.NewStatementRepository(c.db, c.logger),
	}
	c.directory = directory.NewManagerDirectory(c.db, c.logger)
	return nil
}

func (c *Container) initDispatcher() {
	c.dispatcher = dispatcher.NewDispatcher(
		dispatcher.WithLogger(&dispatcherLoggerAdapter{logger: c.logger}),
	)

	if c.config.Notifier.WebhookURL != "" {
		c.notifier = notify.NewWebhookNotifier(notify.Config{
			URL:        c.config.Notifier.WebhookURL,
			Timeout:    c.config.Notifier.Timeout,
			MaxRetries: c.config.Notifier.MaxRetries,
		}, c.logger)
		notify.SubscribeAll(c.dispatcher, c.notifier)
		c.logger.Info("Webhook notifier subscribed", zap.String("url", c.config.Notifier.WebhookURL))
	}
}

func (c *Container) initServices() error {
	payLocation, err := time.LoadLocation(c.config.PayRun.Timezone)
	if err != nil {
		return fmt.Errorf("load pay-run timezone: %w", err)
	}

	svcLogger := &zapLoggerAdapter{logger: c.logger}

	generator, err := statement.NewGenerator(
		c.config.Statement.OutputDir,
		c.config.Statement.CompanyName,
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("create statement generator: %w", err)
	}

	c.services = &ServiceBundle{
		Commission: service.NewCommissionService(
			c.repositories.Commission,
			c.repositories.StatusLog,
			c.directory,
			c.db,
			c.dispatcher,
			svcLogger,
		),
		Approval: service.NewApprovalService(
			c.repositories.Commission,
			c.repositories.StatusLog,
			c.repositories.Override,
			c.db,
			c.dispatcher,
			payLocation,
			svcLogger,
		),
		Draw: service.NewDrawService(
			c.repositories.Draw,
			c.db,
			c.dispatcher,
			svcLogger,
		),
		Override:  service.NewOverrideService(c.repositories.Override),
		Statement: statement.NewService(c.repositories.Commission, generator, c.repositories.Statement),
	}
	return nil
}

// initServer builds the HTTP server but does not listen. The caller runs
// Server().Start, which blocks until its context is cancelled.
func (c *Container) initServer() {
	c.server = httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         c.config.Server.Host,
			Port:         c.config.Server.Port,
			ReadTimeout:  c.config.Server.ReadTimeout,
			WriteTimeout: c.config.Server.WriteTimeout,
		},
		c.services.Commission,
		c.services.Approval,
		c.services.Draw,
		c.services.Override,
		c.services.Statement,
		&zapLoggerAdapter{logger: c.logger},
	)
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			c.logger.Error("Failed to stop HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.database != nil {
		if err := c.database.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}
	c.logger.Info("Container closed")
	return nil
}

// Ready reports whether all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Server returns the HTTP server.
func (c *Container) Server() *httpserver.Server {
	return c.server
}

// zapLoggerAdapter adapts zap.Logger to the keysAndValues logger interfaces
// used by the service and interface layers.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// dispatcherLoggerAdapter adapts zap.Logger to the dispatcher.Logger
// interface.
type dispatcherLoggerAdapter struct {
	logger *zap.Logger
}

func (a *dispatcherLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *dispatcherLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
