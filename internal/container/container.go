package container

import (
	"context"
	"fmt"

	"utitriage/adapters/artifactstore"
	"utitriage/adapters/postgres"
	"utitriage/app"
	"utitriage/domain/artifacts"
	"utitriage/domain/core"
	"utitriage/internal"
	"utitriage/internal/config"
	"utitriage/internal/errors"
	"utitriage/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure, only set for the postgres artifact source or registry commands
	DB *sqlx.DB

	Source    artifacts.Source
	Publisher artifacts.Publisher

	Artifacts *artifacts.Set
	Predictor *app.Predictor
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)),
	}, nil
}

// Init connects the configured artifact source, loads the bundle once and
// builds the predictor. A bundle that fails to load leaves the container
// without a predictor.
func (c *Container) Init(ctx context.Context) error {
	if err := c.initSource(ctx); err != nil {
		return err
	}

	set, err := c.Source.Load(ctx)
	if err != nil {
		return err
	}
	predictor, err := app.NewPredictor(set, c.Logger)
	if err != nil {
		return err
	}

	c.Artifacts = set
	c.Predictor = predictor
	c.Logger.Info("artifacts %s ready (%s source)", set.Version(), c.Config.Artifacts.Source)
	return nil
}

func (c *Container) initSource(ctx context.Context) error {
	switch c.Config.Artifacts.Source {
	case config.SourceFilesystem:
		c.Source = artifactstore.NewFileStore(c.Config.Artifacts.Dir, c.Logger)
		return nil
	case config.SourcePostgres:
		repo, err := c.Registry(ctx)
		if err != nil {
			return err
		}
		c.Source = repo
		return nil
	}
	return errors.ConfigInvalid(fmt.Sprintf("unknown artifact source %q", c.Config.Artifacts.Source))
}

// Registry connects to the database, runs migrations and returns the artifact
// repository for the configured version. It also becomes the container's Publisher.
func (c *Container) Registry(ctx context.Context) (*postgres.ArtifactRepository, error) {
	if err := c.InitDatabase(ctx); err != nil {
		return nil, err
	}
	version, err := core.ParseBundleVersion(c.Config.Artifacts.Version)
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	repo := postgres.NewArtifactRepository(c.DB, version, c.Logger)
	c.Publisher = repo
	return repo, nil
}

// InitDatabase opens the connection and applies migrations
func (c *Container) InitDatabase(ctx context.Context) error {
	if c.DB != nil {
		return nil
	}
	if c.Config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.Logger.Info("connected to database")
	return nil
}

// Close releases the database connection, if any
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
