package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lovematch/internal/llm"
	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

// CompletionGateway is the part of *llm.Gateway the services use.
type CompletionGateway interface {
	CompleteJSON(ctx context.Context, call llm.Call, out any) error
	CompleteText(ctx context.Context, call llm.Call) (string, error)
	ModelID() string
}

// SessionIssuer signs and checks the token that ties a question batch to
// its analysis.
type SessionIssuer interface {
	CreateToken(mode string, questionIDs []int) (string, error)
	ValidateToken(token string) (*utils.SessionClaims, error)
}

// Settings holds per-purpose sampling parameters.
type Settings struct {
	QuestionTemperature float64
	AnalysisTemperature float64
	FollowUpTemperature float64
}

func DefaultSettings() Settings {
	return Settings{
		QuestionTemperature: 0.8,
		AnalysisTemperature: 0.8,
		FollowUpTemperature: 0.7,
	}
}

var questionsSchema = llm.MustCompileSchema("questions", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "integer", "minimum": 1},
					"text": map[string]any{"type": "string", "minLength": 1},
					"category": map[string]any{
						"type": "string",
						"enum": []any{
							string(response_models.CategoryPersonality),
							string(response_models.CategoryValues),
							string(response_models.CategoryLifestyle),
						},
					},
					"options": map[string]any{
						"type":     "array",
						"minItems": 4,
						"maxItems": 4,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"value": map[string]any{"type": "integer", "minimum": 1, "maximum": 4},
								"text":  map[string]any{"type": "string", "minLength": 1},
							},
							"required": []any{"value", "text"},
						},
					},
					"pairedOnly": map[string]any{"type": "boolean"},
				},
				"required": []any{"id", "text", "category", "options"},
			},
		},
	},
	"required": []any{"questions"},
})

type QuestionServiceInterface interface {
	GenerateQuestions(ctx context.Context, cfg *request_models.AssessmentConfig) (*response_models.QuestionsResponse, error)
}

type QuestionService struct {
	gateway  CompletionGateway
	sessions SessionIssuer
	settings Settings
	logger   *zap.Logger
}

func NewQuestionService(
	gateway CompletionGateway,
	sessions SessionIssuer,
	settings Settings,
	logger *zap.Logger,
) QuestionServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionService{
		gateway:  gateway,
		sessions: sessions,
		settings: settings,
		logger:   logger,
	}
}

type questionsEnvelope struct {
	Questions []response_models.Question `json:"questions"`
}

// GenerateQuestions makes one completion call. The batch is returned in
// generation order or rejected as a whole.
func (s *QuestionService) GenerateQuestions(ctx context.Context, cfg *request_models.AssessmentConfig) (*response_models.QuestionsResponse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var envelope questionsEnvelope
	err := s.gateway.CompleteJSON(ctx, llm.Call{
		Purpose:     "questions",
		Messages:    questionMessages(cfg),
		Temperature: s.settings.QuestionTemperature,
		Schema:      questionsSchema,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	if err := validateBatch(envelope.Questions, cfg.IsPaired()); err != nil {
		raw, _ := json.Marshal(envelope)
		return nil, fmt.Errorf("generate questions: %w", llm.ShapeError(string(raw), err))
	}

	resp := &response_models.QuestionsResponse{Questions: envelope.Questions}
	if s.sessions != nil {
		ids := make([]int, len(envelope.Questions))
		for i, q := range envelope.Questions {
			ids[i] = q.ID
		}
		token, err := s.sessions.CreateToken(string(cfg.Mode), ids)
		if err != nil {
			return nil, fmt.Errorf("sign session token: %w", err)
		}
		resp.SessionToken = token
	}

	s.logger.Info("questions generated",
		zap.String("mode", string(cfg.Mode)),
		zap.Int("count", len(resp.Questions)),
	)
	return resp, nil
}

// validateBatch enforces the rules a schema cannot express: unique ids,
// ordered option values and the per-mode question counts.
func validateBatch(questions []response_models.Question, paired bool) error {
	seen := make(map[int]bool, len(questions))
	general, pairedOnly := 0, 0

	for i, q := range questions {
		if q.ID < 1 {
			return fmt.Errorf("question %d has no id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if q.Text == "" {
			return fmt.Errorf("question %d has no text", q.ID)
		}
		switch q.Category {
		case response_models.CategoryPersonality, response_models.CategoryValues, response_models.CategoryLifestyle:
		default:
			return fmt.Errorf("question %d has unknown category %q", q.ID, q.Category)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d has %d options, want 4", q.ID, len(q.Options))
		}
		for j, o := range q.Options {
			if o.Value != j+1 {
				return fmt.Errorf("question %d option %d has value %d, want %d", q.ID, j, o.Value, j+1)
			}
			if o.Text == "" {
				return fmt.Errorf("question %d option %d has no text", q.ID, o.Value)
			}
		}
		if q.PairedOnly {
			pairedOnly++
		} else {
			general++
		}
	}

	if general != generalQuestionCount {
		return fmt.Errorf("got %d general questions, want %d", general, generalQuestionCount)
	}
	want := 0
	if paired {
		want = pairedQuestionCount
	}
	if pairedOnly != want {
		return fmt.Errorf("got %d paired-only questions, want %d", pairedOnly, want)
	}
	return nil
}
