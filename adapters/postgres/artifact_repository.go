package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"utitriage/adapters/models"
	"utitriage/domain/artifacts"
	"utitriage/domain/core"
	"utitriage/internal"
	"utitriage/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ArtifactRepository stores model bundles in the model_artifacts table. Payloads
// are kept as JSON (not JSONB) so the stored bytes hash to the published checksum.
type ArtifactRepository struct {
	db      *sqlx.DB
	version core.BundleVersion
	logger  *internal.Logger
}

type artifactRow struct {
	Name     string `db:"name"`
	Payload  []byte `db:"payload"`
	Checksum string `db:"checksum"`
}

// NewArtifactRepository creates a repository that loads the given version, or
// the most recently published one for core.LatestBundle
func NewArtifactRepository(db *sqlx.DB, version core.BundleVersion, logger *internal.Logger) *ArtifactRepository {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	if version == "" {
		version = core.LatestBundle
	}
	return &ArtifactRepository{db: db, version: version, logger: logger.With("ArtifactRepository")}
}

// Load implements artifacts.Source
func (r *ArtifactRepository) Load(ctx context.Context) (*artifacts.Set, error) {
	version, err := r.resolveVersion(ctx)
	if err != nil {
		return nil, err
	}

	var rows []artifactRow
	err = r.db.SelectContext(ctx, &rows, `
		SELECT name, payload, checksum
		FROM model_artifacts
		WHERE bundle_version = $1
	`, version)
	if err != nil {
		return nil, errors.ArtifactLoadFailed(version, errors.DatabaseError("failed to read bundle", err))
	}
	if len(rows) == 0 {
		return nil, errors.ArtifactLoadFailed(version, errors.NotFound("bundle "+version))
	}

	files := make(map[string][]byte, len(rows))
	for _, row := range rows {
		files[row.Name] = row.Payload
	}

	set, err := models.DecodeBundle(version, files)
	if err != nil {
		return nil, err
	}
	if want := core.Hash(rows[0].Checksum); set.Checksum() != want {
		return nil, errors.ArtifactLoadFailed(version,
			fmt.Errorf("checksum mismatch: stored %s, computed %s", want.Short(), set.Checksum().Short()))
	}

	r.logger.Info("loaded bundle %s (%s) from database", version, set.Checksum().Short())
	return set, nil
}

func (r *ArtifactRepository) resolveVersion(ctx context.Context) (string, error) {
	if r.version != core.LatestBundle {
		return r.version.String(), nil
	}
	var version string
	err := r.db.GetContext(ctx, &version, `
		SELECT bundle_version
		FROM model_bundles
		ORDER BY created_at DESC, bundle_version DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return "", errors.ArtifactLoadFailed(core.LatestBundle.String(), errors.NotFound("published bundle"))
	}
	if err != nil {
		return "", errors.ArtifactLoadFailed(core.LatestBundle.String(), errors.DatabaseError("failed to resolve latest bundle", err))
	}
	return version, nil
}

// Publish implements artifacts.Publisher. The bundle is decoded first so a
// broken bundle never reaches the table, then written in one transaction.
func (r *ArtifactRepository) Publish(ctx context.Context, version string, files map[string][]byte) error {
	v, err := core.ParseBundleVersion(version)
	if err != nil {
		return errors.ValidationError(err.Error())
	}
	if v == core.LatestBundle {
		return errors.ValidationError("bundle version \"latest\" is reserved")
	}
	if _, err := models.DecodeBundle(v.String(), files); err != nil {
		return err
	}
	checksum := core.ComputeBundleHash(files)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, name := range artifacts.Names() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO model_artifacts (bundle_version, name, payload, checksum, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, v.String(), name, string(files[name]), checksum.String())
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return errors.ValidationError(fmt.Sprintf("bundle %s already exists", v))
			}
			return errors.DatabaseError("failed to insert artifact "+name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit bundle", err)
	}
	r.logger.Info("published bundle %s (%s)", v, checksum.Short())
	return nil
}

// ListVersions implements artifacts.Publisher, newest first
func (r *ArtifactRepository) ListVersions(ctx context.Context) ([]artifacts.BundleInfo, error) {
	var infos []artifacts.BundleInfo
	err := r.db.SelectContext(ctx, &infos, `
		SELECT bundle_version, checksum, artifacts, created_at
		FROM model_bundles
		ORDER BY created_at DESC, bundle_version DESC
	`)
	if err != nil {
		return nil, errors.DatabaseError("failed to list bundles", err)
	}
	return infos, nil
}
