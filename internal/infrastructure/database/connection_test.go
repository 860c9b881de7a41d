package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/shared/config"
	shareddb "github.com/candlepin/candlepin-sub005/internal/shared/db"
)

func TestOpen_SQLite(t *testing.T) {
	t.Cleanup(func() { shareddb.SetInBlockSize(0) })

	gdb, err := Open(&config.DatabaseConfig{Driver: config.DriverSQLite, Database: ":memory:", InBlockSize: 5})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	assert.Equal(t, 5, shareddb.InBlockSize())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
