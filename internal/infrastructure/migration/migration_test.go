package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func TestNewManager_StrategySelection(t *testing.T) {
	log := logger.NewNopLogger()

	tests := []struct {
		name     string
		env      string
		dialect  string
		strategy string
	}{
		{"development mysql", constants.EnvDevelopment, "mysql", "gorm_auto_migrate"},
		{"production mysql", constants.EnvProduction, "mysql", "goose"},
		{"production sqlite", constants.EnvProduction, "sqlite", "gorm_auto_migrate"},
		{"production postgres", constants.EnvProduction, "postgres", "gorm_auto_migrate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(tt.env, tt.dialect, log)
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, m.GetStrategy().GetName())
		})
	}
}

func TestNewGooseStrategy_RejectsOtherDialects(t *testing.T) {
	_, err := NewGooseStrategy("sqlite", logger.NewNopLogger())
	assert.Error(t, err)
}

func TestEmbeddedScripts(t *testing.T) {
	entries, err := scripts.ReadDir(scriptsDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestGormAutoMigrate_CreatesSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy(logger.NewNopLogger()), logger.NewNopLogger())
	require.NoError(t, m.Migrate(db))

	for _, table := range []string{constants.TablePools, constants.TableEntitlements, constants.TableAsyncJobs, constants.TableOwnerProducts} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
