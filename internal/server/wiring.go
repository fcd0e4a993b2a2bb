package server

import (
	"context"
	"fmt"
	"io"

	"github.com/vedant281104/AgriShield/internal/config"
	"github.com/vedant281104/AgriShield/internal/credentials"
	"github.com/vedant281104/AgriShield/internal/cryptox"
	"github.com/vedant281104/AgriShield/internal/ensemble"
	"github.com/vedant281104/AgriShield/internal/imaging"
	"github.com/vedant281104/AgriShield/internal/inference"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/storage"
)

// NewLogger builds the logger selected by cfg. The returned func flushes it.
func NewLogger(cfg *config.Config, w io.Writer) (logging.Logger, func() error, error) {
	return logging.New(logging.Options{
		Backend: cfg.LogBackend,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	}, w)
}

// OpenCredentialStore opens and migrates the database and wraps it in a
// credentials.Store using the configured digest. The caller closes the DB.
func OpenCredentialStore(ctx context.Context, cfg *config.Config) (*credentials.Store, *storage.DB, error) {
	digester, err := cryptox.NewDigester(cfg.DigestAlgorithm, cfg.PasswordPepper)
	if err != nil {
		return nil, nil, fmt.Errorf("digester init error: %w", err)
	}

	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := credentials.NewStore(db.Accounts(), digester)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func NewModelLoader(cfg *config.Config, logger logging.Logger) *inference.Loader {
	return &inference.Loader{
		S3: inference.S3Options{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
		},
		Logger: logger,
	}
}

// LoadClassifier loads both models and probes the resulting ensemble once,
// so a model whose output does not match the label catalog fails here
// rather than on the first request.
func LoadClassifier(ctx context.Context, cfg *config.Config, loader *inference.Loader, logger logging.Logger) (*ensemble.Classifier, error) {
	primary, err := loader.Load(ctx, cfg.PrimaryModelURI)
	if err != nil {
		return nil, fmt.Errorf("primary model: %w", err)
	}
	secondary, err := loader.Load(ctx, cfg.SecondaryModelURI)
	if err != nil {
		return nil, fmt.Errorf("secondary model: %w", err)
	}

	normalizer := imaging.NewNormalizer(
		imaging.WithMaxBytes(int(cfg.MaxUploadBytes)),
		imaging.WithMaxPixels(cfg.MaxImagePixels),
	)
	clf := ensemble.New(primary, secondary,
		ensemble.WithNormalizer(normalizer),
		ensemble.WithLogger(logger.With("module", "ensemble")),
	)

	if err := clf.Probe(ctx); err != nil {
		return nil, fmt.Errorf("model probe: %w", err)
	}
	return clf, nil
}
