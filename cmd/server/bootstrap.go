package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/classpad/answerboard/internal/accounts"
	"github.com/classpad/answerboard/internal/api"
	"github.com/classpad/answerboard/internal/app"
	"github.com/classpad/answerboard/internal/app/maintenance"
	iauth "github.com/classpad/answerboard/internal/auth"
	"github.com/classpad/answerboard/internal/board"
	"github.com/classpad/answerboard/internal/cache"
	"github.com/classpad/answerboard/internal/database"
	"github.com/classpad/answerboard/internal/middleware"
	"github.com/classpad/answerboard/internal/services"
	"github.com/classpad/answerboard/internal/sheets"
	"github.com/classpad/answerboard/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Store     cache.Store
	Tiered    *cache.Tiered
	AuditSvc  *services.AuditService
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, cache backend, services, and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	stack.Store, err = selectCacheBackend(cfg, dbStore, log)
	if err != nil {
		return nil, err
	}

	stack.Tiered, err = cache.NewTiered(stack.Store)
	if err != nil {
		return nil, fmt.Errorf("initialise tiered cache: %w", err)
	}

	stack.AuditSvc, err = services.NewAuditService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit service: %w", err)
	}

	rows, err := sheets.NewClient(cfg.Sheets.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise sheets client: %w", err)
	}

	lookup, err := accounts.NewLookup(stack.Tiered, rows, cfg.Sheets.UsersSheet)
	if err != nil {
		return nil, fmt.Errorf("initialise account lookup: %w", err)
	}

	registry, err := accounts.NewRegistry(rows, cfg.Sheets.UsersSheet, stack.Tiered, stack.AuditSvc)
	if err != nil {
		return nil, fmt.Errorf("initialise account registry: %w", err)
	}

	answers, err := board.NewAnswerService(rows, cfg.Sheets.AnswersSheet, stack.Tiered, cfg.Board.MaxAnswerLength)
	if err != nil {
		return nil, fmt.Errorf("initialise answer service: %w", err)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(dbStore, stack.AuditSvc,
		maintenance.WithAuditRetention(cfg.Audit.Retention),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	// Shared deployments count rate-limit hits through the shared cache store;
	// the memory backend keeps counters process-local.
	if _, ok := stack.Store.(*cache.MemoryStore); ok {
		stack.RateStore = middleware.NewMemoryRateStore()
	} else {
		stack.RateStore = middleware.NewStoreRateStore(stack.Store)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:    cfg,
		JWT:       jwtSvc,
		Lookup:    lookup,
		Registry:  registry,
		Answers:   answers,
		Audit:     stack.AuditSvc,
		RateStore: stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// selectCacheBackend picks the configured cache store, degrading to the
// database-backed store when redis is configured but unreachable.
func selectCacheBackend(cfg *app.Config, dbStore *cache.DatabaseStore, log *zap.Logger) (cache.Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	switch backend {
	case "", "memory":
		return cache.NewMemoryStore(), nil
	case "database":
		return dbStore, nil
	case "redis":
		store, err := cache.NewRedisStore(cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable; falling back to database-backed cache", zap.Error(err))
			return dbStore, nil
		}
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// Shutdown releases resources owned by the stack in reverse start order.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if err := s.Cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	switch store := s.Store.(type) {
	case *cache.MemoryStore:
		store.Close()
	case *cache.RedisStore:
		if err := store.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}

	closeDatabase(s.DB, log)
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
