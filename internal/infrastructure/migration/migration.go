// Package migration creates and upgrades the database schema, either from
// the embedded goose scripts or with GORM AutoMigrate.
package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy for an environment and dialect. MySQL
// outside development runs the versioned scripts; everything else uses
// AutoMigrate.
func NewManager(environment, dialect string, log logger.Interface) (*Manager, error) {
	log = log.With("component", "migration.manager")

	if strings.EqualFold(environment, constants.EnvDevelopment) || dialect != "mysql" {
		return NewManagerWithStrategy(NewGormAutoMigrateStrategy(log), log), nil
	}

	goose, err := NewGooseStrategy(dialect, log)
	if err != nil {
		return nil, err
	}
	return NewManagerWithStrategy(goose, log), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{strategy: strategy, logger: log}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...any) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
