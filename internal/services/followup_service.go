package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"lovematch/internal/llm"
	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

const (
	maxFollowUpTurns    = 20
	maxFollowUpQuestion = 1000
	followUpMaxTokens   = 1000
)

type FollowUpServiceInterface interface {
	Ask(ctx context.Context, req *request_models.FollowUpRequest) (*response_models.FollowUpResponse, error)
}

type FollowUpService struct {
	gateway  CompletionGateway
	settings Settings
	logger   *zap.Logger
}

func NewFollowUpService(gateway CompletionGateway, settings Settings, logger *zap.Logger) FollowUpServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowUpService{gateway: gateway, settings: settings, logger: logger}
}

// Ask answers one follow-up question. The conversation lives on the client,
// which sends the prior turns with every request.
func (s *FollowUpService) Ask(ctx context.Context, req *request_models.FollowUpRequest) (*response_models.FollowUpResponse, error) {
	if req == nil {
		return nil, utils.BadInput("body", "is required")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	if err := validateFollowUp(req); err != nil {
		return nil, err
	}

	answer, err := s.gateway.CompleteText(ctx, llm.Call{
		Purpose:     "followup",
		Messages:    followUpMessages(req.Config, req.Result, req.History, strings.TrimSpace(req.Question)),
		Temperature: s.settings.FollowUpTemperature,
		MaxTokens:   followUpMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("answer follow-up: %w", err)
	}

	s.logger.Info("follow-up answered", zap.Int("history", len(req.History)))
	return &response_models.FollowUpResponse{Answer: answer}, nil
}

func validateFollowUp(req *request_models.FollowUpRequest) error {
	q := strings.TrimSpace(req.Question)
	if q == "" {
		return utils.BadInput("question", "is required")
	}
	if utf8.RuneCountInString(q) > maxFollowUpQuestion {
		return utils.BadInput("question", fmt.Sprintf("must be at most %d characters", maxFollowUpQuestion))
	}
	if len(req.History) > maxFollowUpTurns {
		return utils.BadInput("history", fmt.Sprintf("must hold at most %d turns", maxFollowUpTurns))
	}
	for i, turn := range req.History {
		switch llm.Role(turn.Role) {
		case llm.RoleUser, llm.RoleAssistant:
		default:
			return utils.BadInput("history", fmt.Sprintf("turn %d has invalid role %q", i, turn.Role))
		}
		if strings.TrimSpace(turn.Content) == "" {
			return utils.BadInput("history", fmt.Sprintf("turn %d is empty", i))
		}
	}
	return nil
}
