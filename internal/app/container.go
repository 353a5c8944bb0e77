package app

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/jacare-do-corte/internal/audit"
	"github.com/BruksfildServices01/jacare-do-corte/internal/config"
	dbpkg "github.com/BruksfildServices01/jacare-do-corte/internal/db"
	"github.com/BruksfildServices01/jacare-do-corte/internal/infra/cache"
	infraRepo "github.com/BruksfildServices01/jacare-do-corte/internal/infra/repository"
	"github.com/BruksfildServices01/jacare-do-corte/internal/infra/storage"
	"github.com/BruksfildServices01/jacare-do-corte/internal/outbox"
	"github.com/BruksfildServices01/jacare-do-corte/internal/session"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/account"
	"github.com/BruksfildServices01/jacare-do-corte/internal/usecase/reminder"
)

// Container holds the singletons shared by the API and the reminder job.
type Container struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client

	Appointments *infraRepo.AppointmentGormRepository
	Catalog      *infraRepo.CatalogGormRepository
	Accounts     *infraRepo.AccountGormRepository
	Automations  *infraRepo.AutomationGormRepository

	Outbox      outbox.Store
	Codes       account.CodeStore
	Revocations account.Revocations
	Claims      reminder.Deduper

	Hub       *session.Hub
	Bus       *session.RedisBus
	Publisher session.Publisher

	Storage  *storage.S3
	Audit    *audit.Dispatcher
	AuditLog *audit.Logger
}

// Build connects PostgreSQL (required) and Redis (optional). Without
// Redis the ephemeral stores live in process.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}

	auditLog := audit.New(db)

	c := &Container{
		Config:       cfg,
		Log:          log,
		DB:           db,
		Appointments: infraRepo.NewAppointmentGormRepository(db),
		Catalog:      infraRepo.NewCatalogGormRepository(db),
		Accounts:     infraRepo.NewAccountGormRepository(db),
		Automations:  infraRepo.NewAutomationGormRepository(db),
		Hub:          session.NewHub(),
		Audit:        audit.NewDispatcher(auditLog, log),
		AuditLog:     auditLog,
		Storage: storage.NewS3(storage.Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		}),
	}

	if err := c.Automations.Seed(ctx); err != nil {
		log.Warn("automation seed failed", zap.Error(err))
	}

	rdb, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, using in-process stores", zap.Error(err))

		mem := cache.NewMemory()
		c.Outbox = outbox.NewMemoryStore()
		c.Codes = mem
		c.Revocations = mem
		c.Claims = mem
		c.Publisher = c.Hub
		return c, nil
	}

	c.Redis = rdb
	c.Outbox = outbox.NewRedisStore(rdb, outbox.DefaultKey)
	c.Codes = cache.NewRedisCodes(rdb)
	c.Revocations = cache.NewRedisRevocations(rdb)
	c.Claims = cache.NewRedisClaims(rdb)
	c.Bus = session.NewRedisBus(rdb, c.Hub, log)
	c.Publisher = c.Bus
	return c, nil
}

// Close flushes the audit queue and releases connections.
func (c *Container) Close() {
	c.Audit.Close()

	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if sqlDB, err := c.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
