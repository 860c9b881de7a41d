package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPartition(t *testing.T) {
	t.Run("empty input yields no blocks", func(t *testing.T) {
		assert.Nil(t, Partition([]string{}, 3))
	})

	t.Run("splits into bounded blocks preserving order", func(t *testing.T) {
		blocks := Partition([]int{1, 2, 3, 4, 5, 6, 7}, 3)
		require.Len(t, blocks, 3)
		assert.Equal(t, []int{1, 2, 3}, blocks[0])
		assert.Equal(t, []int{4, 5, 6}, blocks[1])
		assert.Equal(t, []int{7}, blocks[2])
	})

	t.Run("appending to a block does not clobber the next one", func(t *testing.T) {
		items := []int{1, 2, 3, 4}
		blocks := Partition(items, 2)
		_ = append(blocks[0], 99)
		assert.Equal(t, []int{3, 4}, blocks[1])
	})
}

func TestForEachBlock(t *testing.T) {
	SetInBlockSize(2)
	defer SetInBlockSize(0)

	var seen [][]string
	err := ForEachBlock([]string{"a", "b", "c"}, func(block []string) error {
		seen = append(seen, block)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, seen)

	stop := errors.New("stop")
	calls := 0
	err = ForEachBlock([]string{"a", "b", "c"}, func(block []string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	SetInBlockSize(-1)
	assert.Equal(t, DefaultInBlockSize, InBlockSize())
}

type counter struct {
	ID    uint `gorm:"primaryKey"`
	Value int
}

func TestBlockSizeFor(t *testing.T) {
	SetInBlockSize(1000)
	defer SetInBlockSize(0)

	assert.Equal(t, 1000, BlockSizeFor(1))
	assert.Equal(t, 500, BlockSizeFor(2))
	assert.Equal(t, 333, BlockSizeFor(3))
	assert.Equal(t, 1000, BlockSizeFor(0))

	SetInBlockSize(1)
	assert.Equal(t, 1, BlockSizeFor(2), "a block always holds at least one item")
}

func TestTransactionManager(t *testing.T) {
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(&counter{}))

	tm := NewTransactionManager(database)
	ctx := context.Background()

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
			assert.True(t, InTransaction(txCtx))
			require.NoError(t, GetTxFromContext(txCtx, database).Create(&counter{Value: 1}).Error)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int64
		require.NoError(t, database.Model(&counter{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
			return tm.RunInTransaction(txCtx, func(inner context.Context) error {
				assert.Same(t, GetTxFromContext(txCtx, database), GetTxFromContext(inner, database))
				return GetTxFromContext(inner, database).Create(&counter{Value: 2}).Error
			})
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, database.Model(&counter{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("no transaction outside", func(t *testing.T) {
		assert.False(t, InTransaction(ctx))
	})
}
