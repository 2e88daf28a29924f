package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"lovematch/internal/llm"
	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
)

const (
	generalQuestionCount = 6
	pairedQuestionCount  = 3
)

func profileLines(cfg *request_models.AssessmentConfig) string {
	info := cfg.ParticipantInfo
	var b strings.Builder
	if cfg.IsPaired() {
		b.WriteString("- Mode: Couple\n")
	} else {
		b.WriteString("- Mode: Individual\n")
	}
	fmt.Fprintf(&b, "- Assessment depth: %s\n", cfg.AssessmentType())
	fmt.Fprintf(&b, "- Name: %s\n", strings.TrimSpace(info.Name))
	fmt.Fprintf(&b, "- Age: %d\n", info.Age)
	if info.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", info.Gender)
	}
	if cfg.IsPaired() && info.RelationshipDurationMonths != nil {
		fmt.Fprintf(&b, "- Relationship duration: %d months\n", *info.RelationshipDurationMonths)
	}
	return b.String()
}

func questionMessages(cfg *request_models.AssessmentConfig) []llm.Message {
	paired := 0
	if cfg.IsPaired() {
		paired = pairedQuestionCount
	}

	system := fmt.Sprintf(`You are a professional relationship assessment system. Generate personalized questions based on the user information.

User info:
%s
Return the questions in exactly this JSON format:
{
  "questions": [
    {
      "id": 1,
      "text": "Question text",
      "category": "personality",
      "options": [
        { "value": 1, "text": "Option 1" },
        { "value": 2, "text": "Option 2" },
        { "value": 3, "text": "Option 3" },
        { "value": 4, "text": "Option 4" }
      ],
      "pairedOnly": false
    }
  ]
}

Requirements:
1. Question count: exactly %d general questions with "pairedOnly": false, and exactly %d couple-specific questions with "pairedOnly": true.
2. Each question has a unique positive integer id, numbered from 1 in order.
3. "category" is one of "personality", "values" or "lifestyle", in lowercase.
4. Every question has exactly 4 options with values 1, 2, 3 and 4 in that order, and clear distinctions between them.
5. Use a professional, neutral tone and avoid sensitive topics.

Return only valid JSON.`, profileLines(cfg), generalQuestionCount, paired)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: "Please generate the assessment questions."},
	}
}

func analysisMessages(cfg *request_models.AssessmentConfig, answers request_models.AnswerSet) ([]llm.Message, error) {
	system := fmt.Sprintf(`You are a professional relationship analyst. Analyze the assessment answers and reply in JSON.

User info:
%s
Each answer maps a question id to the selected option value from 1 to 4.

Return exactly this JSON format:
{
  "score": 0,
  "compatibility": "Short compatibility label",
  "suggestions": ["suggestion 1", "suggestion 2", "suggestion 3"],
  "aiAnalysis": "Markdown analysis"
}

Requirements:
1. "score" is an integer from 0 to 100 that aggregates every answered dimension.
2. "compatibility" is a short label for the score.
3. "suggestions" holds 3 to 5 concrete, actionable suggestions.
4. "aiAnalysis" is markdown with headings, emphasis, lists and block quotes, 500 to 800 characters long.

Return only valid JSON.`, profileLines(cfg))

	payload, err := json.Marshal(sortedAnswers(answers))
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: "Please analyze these answers: " + string(payload)},
	}, nil
}

func followUpMessages(
	cfg *request_models.AssessmentConfig,
	result *response_models.AnalysisResult,
	history []request_models.FollowUpTurn,
	question string,
) []llm.Message {
	focus := "personal relationship skills"
	if cfg.IsPaired() {
		focus = "the couple's relationship"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional relationship counselor focused on %s.\n\nUser info:\n%s", focus, profileLines(cfg))
	if result != nil {
		fmt.Fprintf(&b, "\nTheir assessment result: score %d, %q.\n", result.Score, result.CompatibilityLabel)
		if len(result.Suggestions) > 0 {
			b.WriteString("Suggestions they received:\n")
			for _, s := range result.Suggestions {
				fmt.Fprintf(&b, "- %s\n", s)
			}
		}
	}
	b.WriteString("\nGive warm, constructive and professional advice based on what they tell you. Answer in markdown.")

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: b.String()})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: llm.Role(turn.Role), Content: turn.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: question})
}

type answerEntry struct {
	QuestionID int `json:"questionId"`
	Value      int `json:"value"`
}

// sortedAnswers gives the prompt a stable order regardless of map iteration.
func sortedAnswers(answers request_models.AnswerSet) []answerEntry {
	out := make([]answerEntry, 0, len(answers))
	for id, v := range answers {
		out = append(out, answerEntry{QuestionID: id, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}
