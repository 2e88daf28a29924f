package llm

import "context"

// Provider turns one Request into one completion. Implementations issue
// exactly one upstream call per Complete and never retry.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int

	// JSON asks the provider for a JSON object reply (response_format json_object).
	JSON bool
}

type Completion struct {
	Text         string
	Model        string
	FinishReason string
	Usage        Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
