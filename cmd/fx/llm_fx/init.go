package llm_fx

import (
	"context"
	"io"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"lovematch/internal/config"
	"lovematch/internal/llm"
	"lovematch/internal/services"
)

var Module = fx.Provide(
	ProvideProvider,
	ProvideGateway,
)

// ProvideProvider creates the completion backend selected by LLM_PROVIDER.
func ProvideProvider(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	provider, err := llm.NewProvider(context.Background(), llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("completion provider ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", provider.ModelID()),
	)

	if closer, ok := provider.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})
	}
	return provider, nil
}

func ProvideGateway(provider llm.Provider, cfg *config.Config, logger *zap.Logger) services.CompletionGateway {
	return llm.NewGateway(provider, llm.GatewayConfig{
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger.Named("llm"))
}
