package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairizuanbinnoorazman/design-testgen/database"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/design-testgen/storage"
	"gorm.io/gorm"
)

func newLogger(cfg *Config) logger.Logger {
	return logger.NewLogrusLoggerWithOptions(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

func (c *Config) providerConfig() scriptgen.ProviderConfig {
	return scriptgen.ProviderConfig{
		Provider:         c.Generation.Provider,
		Model:            c.Generation.Model,
		APIKey:           c.Generation.APIKey,
		BedrockRegion:    c.Generation.BedrockRegion,
		BedrockAccessKey: c.Generation.BedrockAccessKey,
		BedrockSecretKey: c.Generation.BedrockSecretKey,
		MaxTokens:        c.Generation.MaxTokens,
	}
}

func (c *Config) validationConfig() *scriptgen.ValidationConfig {
	vc := scriptgen.DefaultValidationConfig()
	if c.Generation.MaxImageBytes > 0 {
		vc.MaxImageBytes = c.Generation.MaxImageBytes
	}
	if c.Generation.MaxBaseURLLength > 0 {
		vc.MaxBaseURLLength = c.Generation.MaxBaseURLLength
	}
	return vc
}

func (c *Config) databaseConfig() database.Config {
	return database.Config{
		Driver:       c.Database.Driver,
		Host:         c.Database.Host,
		Port:         c.Database.Port,
		User:         c.Database.User,
		Password:     c.Database.Password,
		Database:     c.Database.Database,
		Path:         c.Database.Path,
		MaxOpenConns: c.Database.MaxOpenConns,
		MaxIdleConns: c.Database.MaxIdleConns,
	}
}

// newOrchestrator wires the model client and the artifact writer for the
// output directory. Without a credential no client is built and every
// generation fails with a credential error.
func newOrchestrator(ctx context.Context, cfg *Config, log logger.Logger) (*scriptgen.Orchestrator, *storage.LocalStorage, error) {
	output, err := storage.NewLocalStorage(cfg.Output.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare output directory: %w", err)
	}

	providerCfg := cfg.providerConfig()
	credential, credErr := providerCfg.ResolveCredential(ctx)
	if credErr != nil && !errors.Is(credErr, scriptgen.ErrCredentialMissing) {
		return nil, nil, fmt.Errorf("invalid model credentials: %w", credErr)
	}

	var client scriptgen.ModelClient
	if credential != "" {
		client, err = scriptgen.NewModelClient(ctx, providerCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create model client: %w", err)
		}
	} else {
		fields := map[string]interface{}{
			"provider": providerCfg.Provider,
		}
		if credErr != nil {
			fields["error"] = credErr.Error()
		}
		log.Warn(ctx, "no model credential configured; generation requests will fail", fields)
	}

	orch := scriptgen.NewOrchestrator(
		scriptgen.OrchestratorConfig{
			Credential:           credential,
			FrameworkAwarePrompt: cfg.Generation.FrameworkAwarePrompt,
		},
		client,
		scriptgen.NewArtifactWriter(output, log),
		log,
	)
	return orch, output, nil
}

// openDatabase connects and, when enabled, applies pending migrations.
func openDatabase(cfg *Config, log logger.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg.databaseConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		if err := database.RunMigrations(sqlDB, cfg.Database.Driver, cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}
		log.Info(context.Background(), "database migrations applied", map[string]interface{}{
			"path": cfg.Database.MigrationsPath,
		})
	}

	return db, nil
}

func newHistoryStorage(ctx context.Context, cfg *Config) (storage.BlobStorage, error) {
	return storage.NewBlobStorage(ctx, storage.Config{
		Type:          cfg.Storage.Type,
		BaseDir:       cfg.Storage.BaseDir,
		S3Bucket:      cfg.Storage.S3Bucket,
		S3Region:      cfg.Storage.S3Region,
		S3Prefix:      cfg.Storage.S3Prefix,
		PresignExpiry: cfg.Storage.S3PresignExpiry,
	})
}
