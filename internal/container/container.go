package container

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/robertofernandezmartinez/ai-corporate-suite/adapters/model"
	"github.com/robertofernandezmartinez/ai-corporate-suite/adapters/postgres"
	"github.com/robertofernandezmartinez/ai-corporate-suite/adapters/tabular"
	"github.com/robertofernandezmartinez/ai-corporate-suite/app"
	"github.com/robertofernandezmartinez/ai-corporate-suite/domain/inference"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/config"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/errors"
	"github.com/robertofernandezmartinez/ai-corporate-suite/internal/normalize"
	"github.com/robertofernandezmartinez/ai-corporate-suite/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Store ports.PredictionStore

	// Domain configuration
	Registry *inference.Registry
	Models   map[string]ports.ModelHandle

	// Pipeline components
	Reader   *tabular.Reader
	Batcher  *app.PersistenceBatcher
	Pipeline *app.PipelineService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewDefaultLogger(),
	}, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := c.initDomains(); err != nil {
		return fmt.Errorf("failed to initialize domains: %w", err)
	}

	if err := c.initModels(); err != nil {
		return fmt.Errorf("failed to initialize models: %w", err)
	}

	c.initPipeline()

	log.Printf("Container initialized successfully with database connection")
	return nil
}

// initDomains loads and validates the built-in domain descriptors
func (c *Container) initDomains() error {
	registry, err := inference.BuiltinRegistry()
	if err != nil {
		return err
	}
	c.Registry = registry
	return nil
}

// initModels loads every domain's scoring artifact. A missing or drifted
// artifact aborts startup; requests must never reach a half-loaded model set.
func (c *Container) initModels() error {
	c.Models = make(map[string]ports.ModelHandle)
	for _, name := range c.Registry.Names() {
		d, ok := c.Registry.Lookup(name)
		if !ok {
			return fmt.Errorf("descriptor %s vanished from registry", name)
		}
		handle, err := model.Load(c.Config.Models.ArtifactDir, d)
		if err != nil {
			return errors.Wrapf(err, "load model for %s", name)
		}
		c.Models[name] = handle
	}
	return nil
}

// initPipeline wires the request-scoped pipeline components
func (c *Container) initPipeline() {
	c.Store = postgres.NewPredictionStore(c.DB)
	c.Reader = tabular.NewReader(c.Config.Pipeline.MaxRecords)
	c.Batcher = app.NewPersistenceBatcher(c.Store, c.Config.Pipeline.BatchRetries, c.Config.Pipeline.RetryBackoff, c.Logger)
	c.Pipeline = app.NewPipelineService(
		c.Registry,
		c.Reader,
		normalize.New(),
		c.Models,
		c.Batcher,
		c.Config.Pipeline.MaxConcurrent,
		c.Logger,
	)
}
