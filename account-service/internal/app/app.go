// Package app composes the accounts microservice from its configuration:
// store, optional Redis cache and event stream, auditor, CQRS services and
// the runtime HTTP surface.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/demobank/microservices/account-service/internal/command"
	"github.com/demobank/microservices/account-service/internal/query"
	"github.com/demobank/microservices/account-service/internal/repository"
	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/config"
	"github.com/demobank/microservices/shared/events"
	"github.com/demobank/microservices/shared/logger"
	sharedredis "github.com/demobank/microservices/shared/redis"
	"github.com/demobank/microservices/shared/runtime"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired accounts microservice.
type App struct {
	Customers   *command.CustomerCommandService
	Accounts    *command.AccountCommandService
	Queries     *query.AccountQueryService
	ContactInfo *config.ContactInfo
	Handler     http.Handler

	cfg     *config.ServiceConfig
	log     *zap.Logger
	closers []func() error
}

// New builds the service. Resources opened before a failure are released.
func New(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	a := &App{cfg: cfg, log: log}

	auditor := newAuditor(cfg)
	clock := audit.SystemClock{}

	var (
		customers repository.CustomerRepository
		accounts  repository.AccountsRepository
		checks    []runtime.HealthCheck
	)

	switch cfg.StoreDriver {
	case "memory":
		s := repository.NewMemoryStore(auditor, clock)
		customers, accounts = s.Customers(), s.Accounts()
		log.Info("using in-memory store")
	default:
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		customers = repository.NewPostgresCustomerRepository(db, auditor, clock)
		accounts = repository.NewPostgresAccountsRepository(db, auditor, clock)
		checks = append(checks, runtime.HealthCheck{Name: "database", Check: db.PingContext})
		log.Info("using postgres store")
	}

	var publisher command.EventPublisher
	if cfg.RedisAddr != "" {
		rdb, err := sharedredis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)

		customers = repository.NewCachedCustomerRepository(customers, rdb.Client, cfg.CacheTTL, log)
		accounts = repository.NewCachedAccountsRepository(accounts, rdb.Client, cfg.CacheTTL, log)
		publisher = events.NewPublisher(rdb.Client, clock)
		checks = append(checks, runtime.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		log.Info("redis view cache and event stream enabled", zap.String("addr", cfg.RedisAddr))
	}

	a.Customers = command.NewCustomerCommandService(customers, auditor, publisher, log)
	a.Accounts = command.NewAccountCommandService(accounts, a.Customers, auditor, publisher, log)
	a.Queries = query.NewAccountQueryService(customers, accounts)

	info, err := loadContactInfo(cfg.ContactInfoFile)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ContactInfo = info
	a.Handler = runtime.NewRouter(cfg.ServiceName, info, log, checks...)

	return a, nil
}

// Run serves the runtime surface until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return runtime.Serve(ctx, ":"+a.cfg.Port, a.Handler, shutdownTimeout, a.log)
}

// Close releases the store and Redis connections in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

func newAuditor(cfg *config.ServiceConfig) audit.Auditor {
	fallback := audit.StaticAuditor(cfg.Auditor)
	if cfg.AuditTokenSecret == "" {
		return fallback
	}
	return audit.NewTokenAuditor(cfg.AuditTokenSecret, fallback)
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func loadContactInfo(path string) (*config.ContactInfo, error) {
	if path == "" {
		return config.LoadContactInfo(nil, config.AccountsPrefix)
	}
	source, err := config.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return config.LoadContactInfo(source, config.AccountsPrefix)
}
