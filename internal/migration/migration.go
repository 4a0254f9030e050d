package migration

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSmartportAlertsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create smartport_alerts table")
	}

	if err := r.createTurbofanRulTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create turbofan_rul_predictions table")
	}

	if err := r.createStockoutPredictionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create stockout_predictions table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSmartportAlertsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS smartport_alerts (
			prediction_id VARCHAR(50) PRIMARY KEY,
			upload_id UUID NOT NULL,
			vessel_id VARCHAR(100) NOT NULL,
			risk_score DECIMAL(6,5) NOT NULL,
			risk_level VARCHAR(20) NOT NULL,
			recommended_action TEXT NOT NULL,
			batch_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createTurbofanRulTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS turbofan_rul_predictions (
			prediction_id VARCHAR(50) PRIMARY KEY,
			upload_id UUID NOT NULL,
			unit_number VARCHAR(100) NOT NULL,
			time_in_cycles INTEGER NOT NULL,
			predicted_rul DECIMAL(10,2) NOT NULL,
			rul_category VARCHAR(20) NOT NULL,
			recommended_action TEXT NOT NULL,
			batch_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE (unit_number, time_in_cycles)
		)
	`)
	return err
}

func (r *MigrationRunner) createStockoutPredictionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stockout_predictions (
			prediction_id VARCHAR(50) PRIMARY KEY,
			upload_id UUID NOT NULL,
			product_id VARCHAR(100) NOT NULL,
			store_id VARCHAR(100),
			stockout_risk_score DECIMAL(6,5) NOT NULL,
			risk_level VARCHAR(20) NOT NULL,
			recommended_action TEXT NOT NULL,
			financial_impact DECIMAL(14,2),
			batch_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_smartport_batch_at ON smartport_alerts(batch_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_smartport_tier ON smartport_alerts(risk_level)",
		"CREATE INDEX IF NOT EXISTS idx_smartport_upload ON smartport_alerts(upload_id)",

		"CREATE INDEX IF NOT EXISTS idx_turbofan_batch_at ON turbofan_rul_predictions(batch_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_turbofan_tier ON turbofan_rul_predictions(rul_category)",
		"CREATE INDEX IF NOT EXISTS idx_turbofan_upload ON turbofan_rul_predictions(upload_id)",

		"CREATE INDEX IF NOT EXISTS idx_stockout_batch_at ON stockout_predictions(batch_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stockout_tier ON stockout_predictions(risk_level)",
		"CREATE INDEX IF NOT EXISTS idx_stockout_upload ON stockout_predictions(upload_id)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			fmt.Printf("Warning: failed to create index: %v\n", err)
		}
	}

	return nil
}
