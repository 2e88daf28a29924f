package session_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"lovematch/internal/config"
	"lovematch/internal/services"
	"lovematch/pkg/utils"
)

var Module = fx.Provide(provideSessionIssuer)

func provideSessionIssuer(cfg *config.Config, logger *zap.Logger) (services.SessionIssuer, error) {
	if cfg.Session.Secret == "" {
		logger.Warn("SESSION_SECRET is not set, session tokens will not survive a restart")
	}
	return utils.NewSessionSigner(cfg.Session.Secret, cfg.Session.TTL)
}
