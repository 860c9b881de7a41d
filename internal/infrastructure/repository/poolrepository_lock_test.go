package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}

func TestPoolRepository_LockPoolsUsesSelectForUpdate(t *testing.T) {
	gdb, mock := setupMockDB(t)
	repo := NewPoolRepository(gdb, logger.NewNopLogger())

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "product_id", "quantity", "consumed", "start_date", "end_date", "version"}).
		AddRow("pool-a", "owner-1", "prod-1", 5, 0, now, now.AddDate(1, 0, 0), 1).
		AddRow("pool-b", "owner-1", "prod-1", 5, 3, now, now.AddDate(1, 0, 0), 2)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `cp_pools` WHERE id IN \\(\\?,\\?\\) ORDER BY id FOR UPDATE").
		WithArgs("pool-a", "pool-b").
		WillReturnRows(rows)
	mock.ExpectQuery("FROM `cp_pool_attributes`").WillReturnRows(sqlmock.NewRows([]string{"pool_id", "name", "value"}))
	mock.ExpectQuery("FROM `cp_pool_provided_products`").WillReturnRows(sqlmock.NewRows([]string{"pool_id", "product_id"}))
	mock.ExpectQuery("FROM `cp_pool_derived_provided_products`").WillReturnRows(sqlmock.NewRows([]string{"pool_id", "product_id"}))
	mock.ExpectQuery("FROM `cp_products` JOIN cp_owner_products").WillReturnRows(sqlmock.NewRows([]string{"uuid", "product_id", "name"}))
	mock.ExpectCommit()

	tm := db.NewTransactionManager(gdb)
	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		locked, err := repo.LockPools(ctx, []string{"pool-b", "pool-a"})
		if err != nil {
			return err
		}
		assert.Equal(t, []string{"pool-a", "pool-b"}, poolIDs(locked))
		assert.Equal(t, int64(3), locked[1].Consumed())
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
