package response_models

type Category string

const (
	CategoryPersonality Category = "personality"
	CategoryValues      Category = "values"
	CategoryLifestyle   Category = "lifestyle"
)

type Question struct {
	ID         int              `json:"id"`
	Text       string           `json:"text"`
	Category   Category         `json:"category"`
	Options    []QuestionOption `json:"options"`
	PairedOnly bool             `json:"pairedOnly"`
}

type QuestionOption struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

type QuestionsResponse struct {
	Questions []Question `json:"questions"`

	// SessionToken binds this batch to the later /analyze call.
	SessionToken string `json:"sessionToken,omitempty"`
}

// AnalysisResult uses the field names of the completion envelope on the wire.
type AnalysisResult struct {
	Score              int      `json:"score"`
	CompatibilityLabel string   `json:"compatibility"`
	Suggestions        []string `json:"suggestions"`
	Narrative          string   `json:"aiAnalysis"`
}

type FollowUpResponse struct {
	Answer string `json:"answer"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
