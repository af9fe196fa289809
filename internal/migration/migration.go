package migration

import (
	"context"

	"utitriage/internal/errors"

	"github.com/jmoiron/sqlx"
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

// Statements lists the DDL in execution order. Every statement is idempotent.
func (r *MigrationRunner) Statements() []string {
	return []string{createArtifactsTable, createVersionIndex, createBundlesView}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createModelArtifactsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create model_artifacts table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	if err := r.createBundlesView(ctx, db); err != nil {
		return errors.DatabaseError("failed to create model_bundles view", err)
	}

	return nil
}

const createArtifactsTable = `
		CREATE TABLE IF NOT EXISTS model_artifacts (
			bundle_version VARCHAR(100) NOT NULL,
			name VARCHAR(100) NOT NULL,
			payload JSON NOT NULL,
			checksum CHAR(64) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (bundle_version, name)
		)`

const createVersionIndex = `
		CREATE INDEX IF NOT EXISTS idx_model_artifacts_created_at
		ON model_artifacts (created_at DESC)`

// model_bundles summarizes one row per version; checksum is the bundle hash,
// which is stored identically on each artifact row of the version.
const createBundlesView = `
		CREATE OR REPLACE VIEW model_bundles AS
		SELECT bundle_version,
			MIN(checksum) AS checksum,
			COUNT(*) AS artifacts,
			MAX(created_at) AS created_at
		FROM model_artifacts
		GROUP BY bundle_version`

func (r *MigrationRunner) createModelArtifactsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createArtifactsTable)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createVersionIndex)
	return err
}

func (r *MigrationRunner) createBundlesView(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createBundlesView)
	return err
}
