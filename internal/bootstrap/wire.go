package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/access"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/infrastructure/security"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/logger"
	http_handlers "github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/handlers"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(DefaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL, exchange string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type Publisher interface {
	PublishAccountEvent(ctx context.Context, evt domain.AccountEvent) error
}

// App is the wired core: config, store and services. Transports and the
// operator tool both start from it.
type App struct {
	Config   *config.Config
	DB       *sql.DB
	Accounts redis.AccountStore
	Tokens   *security.JWTService
	Auth     *auth.Service
	Users    *accounts.Service
	Gate     *access.Gate

	// readiness checks by dependency name
	Checks map[string]http_handlers.Pinger
}

/*
========================
 Core bootstrap logic
========================
*/

// Build wires everything below the transport. The returned cleanup releases
// resources in reverse order and is nil when err != nil.
func Build(deps Deps) (*App, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}
	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	if cfg.DBAutoMigrate && deps.Migrate != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := deps.Migrate(ctx, db)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}

	// 2) account store
	pgRepo := postgres.NewAccountRepo(db)
	checks := map[string]http_handlers.Pinger{"db": pgRepo}

	// 3) redis (best-effort)
	var store redis.AccountStore = pgRepo
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; account cache disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			if rc, ok := c.(*redis.Client); ok {
				store = redis.NewCachedAccountRepo(pgRepo, rc, cfg.AccountCacheTTL)
				checks["redis"] = rc
			}
		}
	}

	// 4) publisher
	pub, err := newPublisher(deps, cfg)
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 5) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt service")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	policy := security.DefaultPasswordPolicy()
	tokens := security.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	// 6) services
	audit := logger.Audit()
	authSvc := auth.NewService(store, hasher, policy, tokens, pub, auth.Config{
		RefreshGrace: cfg.RefreshGrace,
	}).WithAudit(audit)
	usersSvc := accounts.NewService(store, hasher, policy, pub).WithAudit(audit)

	app := &App{
		Config:   cfg,
		DB:       db,
		Accounts: store,
		Tokens:   tokens,
		Auth:     authSvc,
		Users:    usersSvc,
		Gate:     access.NewGate(tokens),
		Checks:   checks,
	}
	return app, func() { runCleanup(cleanupFns) }, nil
}

func newServer(deps Deps) (*http.Server, func(), error) {
	app, cleanup, err := Build(deps)
	if err != nil {
		return nil, nil, err
	}

	// 7) handlers + middleware
	authH := http_handlers.NewAuthHandler(app.Auth)
	usersH := http_handlers.NewUserHandler(app.Users, app.Auth)
	healthH := http_handlers.NewHealthHandler(app.Checks)

	authMW := middleware.Auth(app.Gate, response.WriteError)
	adminMW := middleware.RequireRole(response.WriteError, domain.RoleAdmin)

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:      healthH,
		Auth:        authH,
		Users:       usersH,
		AuthMW:      authMW,
		AdminMW:     adminMW,
		CORSOrigins: app.Config.CORSOrigins,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// 9) server
	srv := &http.Server{
		Addr:         app.Config.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  app.Config.HTTPReadTimeout,
		WriteTimeout: app.Config.HTTPWriteTimeout,
		IdleTimeout:  app.Config.HTTPIdleTimeout,
	}

	return srv, cleanup, nil
}

// newPublisher connects to the broker. In dev a missing or unreachable
// broker degrades to the noop publisher; elsewhere it is fatal.
func newPublisher(deps Deps, cfg *config.Config) (Publisher, error) {
	if cfg.RabbitURL == "" || deps.NewPublisher == nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Msg("rabbitmq not configured; using noop publisher")
			return memory.NewNoopPublisher(), nil
		}
		return nil, errors.New("bootstrap: RABBIT_URL is required outside dev")
	}

	pub, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			return memory.NewNoopPublisher(), nil
		}
		return nil, err
	}
	return pub, nil
}

/*
========================
 Default deps (prod)
========================
*/

func DefaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    postgres.Migrate,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
