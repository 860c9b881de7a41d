package http

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/domain/job"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/cache"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/repository"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	ownerRepo       owner.Repository
	consumerRepo    consumer.Repository
	productRepo     product.Repository
	poolRepo        pool.Repository
	entitlementRepo entitlement.Repository
	jobRepo         job.Repository
}

// newRepositories creates all repository instances from the database
// connection. Product reads go through redis when a client is given.
func newRepositories(db *gorm.DB, redisClient *redis.Client, productTTL time.Duration, log logger.Interface) *repositories {
	var productRepo product.Repository = repository.NewProductRepository(db, log)
	if redisClient != nil {
		productRepo = cache.NewCachedProductRepository(productRepo, redisClient, productTTL, log)
	}

	return &repositories{
		ownerRepo:       repository.NewOwnerRepository(db, log),
		consumerRepo:    repository.NewConsumerRepository(db, consumer.NewDefaultFactValidator(), log),
		productRepo:     productRepo,
		poolRepo:        repository.NewPoolRepository(db, log),
		entitlementRepo: repository.NewEntitlementRepository(db, log),
		jobRepo:         repository.NewAsyncJobRepository(db, log),
	}
}
