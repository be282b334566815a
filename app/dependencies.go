package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/EcoFlowJS/ecoflow-authentication/config"
	"github.com/EcoFlowJS/ecoflow-authentication/controllers"
	"github.com/EcoFlowJS/ecoflow-authentication/jwks"
	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/EcoFlowJS/ecoflow-authentication/manifest"
	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"github.com/EcoFlowJS/ecoflow-authentication/oauth"
	"github.com/EcoFlowJS/ecoflow-authentication/pipeline"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories/memory"
	"github.com/EcoFlowJS/ecoflow-authentication/repositories/postgres"
	"github.com/EcoFlowJS/ecoflow-authentication/utils"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil when clients come from the pipeline file
	Logger *zap.Logger

	// OAuth client store
	Clients repositories.OAuthClientRepository

	// Key handling
	Resolver *keys.Resolver
	Fetcher  *jwks.Fetcher

	// OAuth provider
	Provider oauth.Provider

	// Pipelines
	Manifest  *manifest.Manifest
	Registry  *pipeline.Registry
	Runner    *pipeline.Runner
	Pipelines []*pipeline.Definition
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	var db *postgres.DB
	if cfg.Database != nil {
		var err error
		db, err = postgres.NewDB(*cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}
	return newDependencies(ctx, cfg, logger, db)
}

func newDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *postgres.DB) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}

	deps.initKeys(cfg)
	deps.initProvider(cfg)

	file, err := deps.loadPipelineFile(cfg)
	if err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to load pipelines: %w", err)
	}

	if err := deps.initClientStore(ctx, file.Clients); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize oauth client store: %w", err)
	}

	if err := deps.initPipelines(); err != nil {
		_ = deps.Close(ctx)
		return nil, fmt.Errorf("failed to initialize pipelines: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		zap.Int("pipelines", len(deps.Pipelines)),
		zap.Bool("database", deps.DB != nil))
	return deps, nil
}

// initKeys sets up the key resolver and the shared JWKS cache
func (d *Dependencies) initKeys(cfg *config.Config) {
	if cfg.Token.Salt == "" {
		d.Logger.Warn("no fallback token salt configured",
			zap.String("env", config.TokenSaltEnv))
	}
	d.Resolver = keys.NewResolver(cfg.Token.Salt, d.Logger.Named("keys"))
	d.Fetcher = jwks.NewFetcher(jwks.Config{
		CacheSize:   cfg.JWKS.CacheSize,
		CacheTTL:    cfg.JWKS.CacheTTL,
		HTTPTimeout: cfg.JWKS.HTTPTimeout,
	}, d.Logger.Named("jwks"))
}

func (d *Dependencies) initProvider(cfg *config.Config) {
	d.Provider = oauth.NewGoogleProvider(oauth.GoogleConfig{
		UserInfoURL: cfg.OAuth.UserInfoURL,
		HTTPClient:  &http.Client{Timeout: cfg.OAuth.HTTPTimeout},
	}, d.Logger.Named("oauth"))
}

// loadPipelineFile reads the pipeline file. Controller ids are checked once
// the registry is populated.
func (d *Dependencies) loadPipelineFile(cfg *config.Config) (*pipeline.File, error) {
	if cfg.Pipelines.File == "" {
		d.Logger.Warn("no pipeline file configured")
		return &pipeline.File{}, nil
	}

	file, err := pipeline.LoadFile(cfg.Pipelines.File, nil)
	if err != nil {
		if utils.IsValidationError(err) {
			d.Logger.Error("pipeline file has invalid fields",
				zap.String("file", cfg.Pipelines.File),
				zap.Any("fields", utils.GetValidationFields(err)))
		}
		return nil, err
	}
	d.Pipelines = file.Pipelines

	d.Logger.Info("pipeline file loaded",
		zap.String("file", cfg.Pipelines.File),
		zap.Int("pipelines", len(file.Pipelines)),
		zap.Int("clients", len(file.Clients)))
	return file, nil
}

// initPipelines registers the manifest controllers, fills unset step inputs
// with the manifest defaults and checks every loaded step
func (d *Dependencies) initPipelines() error {
	d.Manifest = manifest.Default()
	if err := d.Manifest.Validate(); err != nil {
		return err
	}

	d.Registry = pipeline.NewRegistry()
	d.Runner = pipeline.NewRunner(d.Registry, d.Logger.Named("pipeline"))

	steps := controllers.New(controllers.Dependencies{
		Resolver: d.Resolver,
		Fetcher:  d.Fetcher,
		Provider: d.Provider,
		Clients:  d.Clients,
		Logger:   d.Logger.Named("controllers"),
	})
	if err := steps.Register(d.Registry); err != nil {
		return err
	}

	for _, def := range d.Pipelines {
		if err := def.Validate(d.Registry); err != nil {
			return err
		}
		for i := range def.Steps {
			applyDefaults(&def.Steps[i], d.Manifest.Defaults(def.Steps[i].Controller))
		}
	}
	return nil
}

func applyDefaults(step *pipeline.Step, defaults map[string]any) {
	if step.Inputs == nil {
		step.Inputs = make(map[string]any, len(defaults))
	}
	for name, value := range defaults {
		if _, ok := step.Inputs[name]; !ok {
			step.Inputs[name] = value
		}
	}
}

// initClientStore selects PostgreSQL when a database is configured and the
// in-memory store otherwise. File clients seed whichever store is used.
func (d *Dependencies) initClientStore(ctx context.Context, seed []*models.OAuthClient) error {
	if d.DB == nil {
		store, err := memory.NewOAuthClientRepository(seed...)
		if err != nil {
			return err
		}
		d.Clients = store
		d.Logger.Info("using in-memory oauth client store", zap.Int("clients", len(seed)))
		return nil
	}

	if err := d.DB.InitSchema(ctx); err != nil {
		return err
	}

	store := postgres.NewOAuthClientRepository(d.DB, d.Logger)
	if err := store.Seed(ctx, seed); err != nil {
		return err
	}
	d.Clients = store
	d.Logger.Info("using postgres oauth client store", zap.Int("seeded", len(seed)))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Fetcher != nil {
		d.Fetcher.Purge()
	}

	// Sync logger
	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
