package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	jobUsecases "github.com/candlepin/candlepin-sub005/internal/application/job/usecases"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/auth"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/config"
	permissionInfra "github.com/candlepin/candlepin-sub005/internal/infrastructure/permission"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/scheduler"
	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/middleware"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// ExpiredPoolsCleanupJobKey identifies cleanup runs in the job history.
const ExpiredPoolsCleanupJobKey = "ExpiredPoolsCleanupJob"

// Container holds the infrastructure components, repositories, use cases,
// handlers and background services, and wires them together.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client
	txMgr  *db.TransactionManager

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Auth
	jwtSvc         *auth.JWTService
	enforcer       *permissionInfra.Enforcer
	authMiddleware *middleware.AuthMiddleware

	schedulerManager *scheduler.SchedulerManager
}

// NewContainer creates a new Container with all dependencies wired together.
func NewContainer(gdb *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     gdb,
		cfg:    cfg,
		log:    log,
		txMgr:  db.NewTransactionManager(gdb),
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	c.ucs = newUseCases(c.repos, c.txMgr, cfg.Jobs.ExpiredPoolBatchSize, log)
	c.hdlrs = newHandlers(c.ucs, log)

	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg

	if cfg.Cache.Enabled {
		c.redis = initRedis(cfg, c.log)
	}
	c.repos = newRepositories(c.db, c.redis, cfg.Cache.ProductTTL, c.log)

	enforcer, err := permissionInfra.NewEnforcer(c.db, cfg.Permission.ModelPath, c.log)
	if err != nil {
		return fmt.Errorf("failed to initialize permission enforcer: %w", err)
	}
	c.enforcer = enforcer

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.TokenTTL)
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.enforcer, c.log)
	return nil
}

// initRedis creates the Redis client. An unreachable server is tolerated:
// the product cache falls back to the database until it comes back.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warnw("redis unreachable, product reads go to the database", "addr", cfg.Redis.GetAddr(), "error", err)
		return redisClient
	}
	log.Infow("Redis connection established successfully")

	return redisClient
}

// StartScheduler registers the periodic jobs and starts the scheduler. A
// zero cleanup interval disables the expired pool cleanup.
func (c *Container) StartScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return err
	}

	if interval := c.cfg.Jobs.ExpiredPoolCleanupInterval; interval > 0 {
		task := c.ucs.runTrackedJobUC.Track(jobUsecases.JobSpec{
			Key:         ExpiredPoolsCleanupJobKey,
			Name:        "Expired pool cleanup",
			Group:       "pool",
			Origin:      "scheduler",
			MaxAttempts: c.cfg.Jobs.MaxAttempts,
		}, c.ucs.cleanupExpiredUC)

		if _, err := manager.RegisterExpiredPoolCleanup(interval, task); err != nil {
			return err
		}
	}

	manager.Start()
	c.schedulerManager = manager
	return nil
}

// Shutdown stops background work and releases connections.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close redis client", "error", err)
		}
	}
}
