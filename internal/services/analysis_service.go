package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"lovematch/internal/llm"
	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

var analysisSchema = llm.MustCompileSchema("analysis", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"score":         map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"compatibility": map[string]any{"type": "string", "minLength": 1},
		"suggestions": map[string]any{
			"type":     "array",
			"minItems": 3,
			"maxItems": 5,
			"items":    map[string]any{"type": "string", "minLength": 1},
		},
		"aiAnalysis": map[string]any{"type": "string", "minLength": 1},
	},
	"required": []any{"score", "compatibility", "suggestions", "aiAnalysis"},
})

// analysisReply mirrors AnalysisResult but keeps the score as a JSON number:
// the schema treats 85.0 and 8.5e1 as integers, so the decode must too.
type analysisReply struct {
	Score       json.Number `json:"score"`
	Label       string      `json:"compatibility"`
	Suggestions []string    `json:"suggestions"`
	Narrative   string      `json:"aiAnalysis"`
}

func (r *analysisReply) result() (*response_models.AnalysisResult, error) {
	f, err := r.Score.Float64()
	if err != nil {
		return nil, fmt.Errorf("score %q: %w", r.Score, err)
	}
	if f != math.Trunc(f) || f < 0 || f > 100 {
		return nil, fmt.Errorf("score %s is not an integer in 0..100", r.Score)
	}
	return &response_models.AnalysisResult{
		Score:              int(f),
		CompatibilityLabel: r.Label,
		Suggestions:        r.Suggestions,
		Narrative:          r.Narrative,
	}, nil
}

type AnalysisServiceInterface interface {
	Analyze(ctx context.Context, req *request_models.AnalyzeRequest) (*response_models.AnalysisResult, error)
}

type AnalysisService struct {
	gateway  CompletionGateway
	sessions SessionIssuer
	settings Settings
	logger   *zap.Logger
}

func NewAnalysisService(
	gateway CompletionGateway,
	sessions SessionIssuer,
	settings Settings,
	logger *zap.Logger,
) AnalysisServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		gateway:  gateway,
		sessions: sessions,
		settings: settings,
		logger:   logger,
	}
}

// Analyze validates the request, then makes a single completion call. There
// is no retry: a failure here ends the assessment.
func (s *AnalysisService) Analyze(ctx context.Context, req *request_models.AnalyzeRequest) (*response_models.AnalysisResult, error) {
	if req == nil {
		return nil, utils.BadInput("body", "is required")
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	if err := req.Answers.Validate(); err != nil {
		return nil, err
	}
	if req.SessionToken != "" {
		if err := s.checkSession(req); err != nil {
			return nil, err
		}
	}

	messages, err := analysisMessages(req.Config, req.Answers)
	if err != nil {
		return nil, err
	}

	var reply analysisReply
	err = s.gateway.CompleteJSON(ctx, llm.Call{
		Purpose:     "analysis",
		Messages:    messages,
		Temperature: s.settings.AnalysisTemperature,
		Schema:      analysisSchema,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("analyze answers: %w", err)
	}
	result, err := reply.result()
	if err != nil {
		return nil, fmt.Errorf("analyze answers: %w", llm.ShapeError(string(reply.Score), err))
	}

	s.logger.Info("analysis completed",
		zap.String("mode", string(req.Config.Mode)),
		zap.Int("answers", len(req.Answers)),
		zap.Int("score", result.Score),
	)
	return result, nil
}

// checkSession requires the token to be valid for this mode and the answers
// to cover exactly the questions it was issued for.
func (s *AnalysisService) checkSession(req *request_models.AnalyzeRequest) error {
	if s.sessions == nil {
		return nil
	}
	claims, err := s.sessions.ValidateToken(req.SessionToken)
	if err != nil {
		s.logger.Debug("session token rejected", zap.Error(err))
		return utils.BadInput("sessionToken", "is invalid or expired")
	}
	if claims.Mode != string(req.Config.Mode) {
		return utils.BadInput("sessionToken", "was issued for a different mode")
	}

	answered := make([]int, 0, len(req.Answers))
	for id := range req.Answers {
		answered = append(answered, id)
	}
	slices.Sort(answered)
	expected := slices.Clone(claims.QuestionIDs)
	slices.Sort(expected)

	if !slices.Equal(answered, expected) {
		return utils.BadInput("answers", "must answer exactly the generated questions")
	}
	return nil
}
