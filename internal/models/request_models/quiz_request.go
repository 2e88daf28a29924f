package request_models

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

type AssessmentMode string

const (
	ModeIndividual AssessmentMode = "individual"
	ModePaired     AssessmentMode = "paired"
)

// UnmarshalJSON accepts the legacy names "single" and "couple".
func (m *AssessmentMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual", "single":
		*m = ModeIndividual
	case "paired", "couple":
		*m = ModePaired
	default:
		*m = AssessmentMode(s)
	}
	return nil
}

const (
	TypeBasic    = "basic"
	TypeAdvanced = "advanced"

	maxNameLength = 64
	maxAge        = 120
)

type AssessmentConfig struct {
	Mode            AssessmentMode  `json:"mode"`
	Type            string          `json:"type,omitempty"`
	ParticipantInfo ParticipantInfo `json:"participantInfo"`
}

type ParticipantInfo struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender,omitempty"`

	// RelationshipDurationMonths is only meaningful in paired mode.
	RelationshipDurationMonths *int `json:"relationshipDurationMonths,omitempty"`
}

// UnmarshalJSON also accepts "relationshipDuration", the field name used by
// the first web client.
func (p *ParticipantInfo) UnmarshalJSON(data []byte) error {
	type plain ParticipantInfo
	var aux struct {
		plain
		RelationshipDuration *int `json:"relationshipDuration,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = ParticipantInfo(aux.plain)
	if p.RelationshipDurationMonths == nil {
		p.RelationshipDurationMonths = aux.RelationshipDuration
	}
	return nil
}

func (c *AssessmentConfig) IsPaired() bool {
	return c.Mode == ModePaired
}

// AssessmentType returns the requested depth, defaulting to basic.
func (c *AssessmentConfig) AssessmentType() string {
	if c.Type == "" {
		return TypeBasic
	}
	return c.Type
}

func (c *AssessmentConfig) Validate() error {
	if c == nil {
		return utils.BadInput("config", "is required")
	}
	switch c.Mode {
	case ModeIndividual, ModePaired:
	case "":
		return utils.BadInput("config.mode", "is required")
	default:
		return utils.BadInput("config.mode", fmt.Sprintf("must be %q or %q", ModeIndividual, ModePaired))
	}
	switch c.Type {
	case "", TypeBasic, TypeAdvanced:
	default:
		return utils.BadInput("config.type", fmt.Sprintf("must be %q or %q", TypeBasic, TypeAdvanced))
	}

	info := c.ParticipantInfo
	name := strings.TrimSpace(info.Name)
	if name == "" {
		return utils.BadInput("config.participantInfo.name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return utils.BadInput("config.participantInfo.name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	if info.Age < 1 || info.Age > maxAge {
		return utils.BadInput("config.participantInfo.age", fmt.Sprintf("must be between 1 and %d", maxAge))
	}
	switch info.Gender {
	case "", "male", "female":
	default:
		return utils.BadInput("config.participantInfo.gender", `must be "male" or "female"`)
	}
	if c.IsPaired() {
		if info.RelationshipDurationMonths == nil {
			return utils.BadInput("config.participantInfo.relationshipDurationMonths", "is required in paired mode")
		}
		if *info.RelationshipDurationMonths < 0 {
			return utils.BadInput("config.participantInfo.relationshipDurationMonths", "must not be negative")
		}
	}
	return nil
}

// AnswerSet maps a question id to the selected option value (1..4).
type AnswerSet map[int]int

func (a AnswerSet) Validate() error {
	if len(a) == 0 {
		return utils.BadInput("answers", "must not be empty")
	}
	for id, value := range a {
		if id < 1 {
			return utils.BadInput("answers", fmt.Sprintf("question id %d is invalid", id))
		}
		if value < 1 || value > 4 {
			return utils.BadInput("answers", fmt.Sprintf("answer to question %d must be between 1 and 4", id))
		}
	}
	return nil
}

type QuestionsRequest struct {
	Config *AssessmentConfig `json:"config" binding:"required"`
}

type AnalyzeRequest struct {
	Config       *AssessmentConfig `json:"config" binding:"required"`
	Answers      AnswerSet         `json:"answers" binding:"required,min=1"`
	SessionToken string            `json:"sessionToken,omitempty"`
}

type FollowUpTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type FollowUpRequest struct {
	Config   *AssessmentConfig               `json:"config" binding:"required"`
	Result   *response_models.AnalysisResult `json:"result,omitempty"`
	History  []FollowUpTurn                  `json:"history,omitempty"`
	Question string                          `json:"question" binding:"required"`
}
