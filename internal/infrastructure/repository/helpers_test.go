package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/migration"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(migration.AutoMigrateModels()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// withInBlockSize shrinks IN-list blocks for the duration of a test.
func withInBlockSize(t *testing.T, size int) {
	t.Helper()
	previous := db.InBlockSize()
	db.SetInBlockSize(size)
	t.Cleanup(func() { db.SetInBlockSize(previous) })
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	owners   owner.Repository
	products product.Repository
	pools    pool.Repository
}

func newFixture(t *testing.T) *fixture {
	gdb := setupTestDB(t)
	log := logger.NewNopLogger()
	return &fixture{
		t:        t,
		ctx:      context.Background(),
		db:       gdb,
		owners:   NewOwnerRepository(gdb, log),
		products: NewProductRepository(gdb, log),
		pools:    NewPoolRepository(gdb, log),
	}
}

func (f *fixture) owner(key string) *owner.Owner {
	o, err := owner.NewOwner(key, "")
	require.NoError(f.t, err)
	require.NoError(f.t, f.owners.Create(f.ctx, o))
	return o
}

func (f *fixture) content(contentID, label string, modifies ...string) *product.Content {
	c, err := product.NewContent(product.ContentParams{
		ID:                 contentID,
		Label:              label,
		Name:               label + " name",
		Type:               "yum",
		ModifiedProductIDs: modifies,
	})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) product(ownerID, productID, name string, attrs map[string]string, content ...*product.Content) *product.Product {
	pcs := make([]product.ProductContent, 0, len(content))
	for _, c := range content {
		pcs = append(pcs, product.ProductContent{Content: c, Enabled: true})
	}
	p, err := product.NewProduct(product.Params{ID: productID, Name: name, Attributes: attrs, Content: pcs})
	require.NoError(f.t, err)
	require.NoError(f.t, f.products.Save(f.ctx, ownerID, p))
	return p
}

func (f *fixture) pool(params pool.Params) *pool.Pool {
	if params.StartDate.IsZero() {
		params.StartDate = testStart
	}
	if params.EndDate.IsZero() {
		params.EndDate = testEnd
	}
	if params.Quantity == 0 {
		params.Quantity = 10
	}
	params.ActiveSubscription = true
	p, err := pool.NewPool(params)
	require.NoError(f.t, err)
	require.NoError(f.t, f.pools.Create(f.ctx, p))
	return p
}

func poolIDs(pools []*pool.Pool) []string {
	ids := make([]string, len(pools))
	for i, p := range pools {
		ids[i] = p.ID()
	}
	return ids
}
