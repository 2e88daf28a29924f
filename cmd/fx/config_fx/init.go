package config_fx

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"lovematch/internal/config"
)

var Module = fx.Options(
	fx.Provide(provideLogger, provideConfig, provideCatalog),
	fx.Invoke(registerLoggerSync),
)

func provideLogger() (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func provideConfig(logger *zap.Logger) (*config.Config, error) {
	mode, err := config.ParseValidationMode(os.Getenv("CONFIG_VALIDATION"))
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(mode, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("validation", string(mode)),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Duration("llm_timeout", cfg.LLM.Timeout),
	)
	return cfg, nil
}

func provideCatalog(cfg *config.Config) (*config.Catalog, error) {
	return config.LoadCatalog(cfg.HTTP.CatalogPath)
}

func registerLoggerSync(lc fx.Lifecycle, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync fails on stderr/stdout on some platforms; nothing to do about it.
			_ = logger.Sync()
			return nil
		},
	})
}
