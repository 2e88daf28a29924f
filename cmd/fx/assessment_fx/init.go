package assessment_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"lovematch/internal/config"
	"lovematch/internal/services"
)

var Module = fx.Provide(
	provideSettings,
	provideQuestionService,
	provideAnalysisService,
	provideFollowUpService,
)

func provideSettings(cfg *config.Config) services.Settings {
	return services.Settings{
		QuestionTemperature: cfg.LLM.QuestionTemperature,
		AnalysisTemperature: cfg.LLM.AnalysisTemperature,
		FollowUpTemperature: cfg.LLM.FollowUpTemperature,
	}
}

func provideQuestionService(
	gateway services.CompletionGateway,
	sessions services.SessionIssuer,
	settings services.Settings,
	logger *zap.Logger,
) services.QuestionServiceInterface {
	return services.NewQuestionService(gateway, sessions, settings, logger.Named("questions"))
}

func provideAnalysisService(
	gateway services.CompletionGateway,
	sessions services.SessionIssuer,
	settings services.Settings,
	logger *zap.Logger,
) services.AnalysisServiceInterface {
	return services.NewAnalysisService(gateway, sessions, settings, logger.Named("analysis"))
}

func provideFollowUpService(
	gateway services.CompletionGateway,
	settings services.Settings,
	logger *zap.Logger,
) services.FollowUpServiceInterface {
	return services.NewFollowUpService(gateway, settings, logger.Named("followup"))
}
