package llm

import "context"

// Provider is the core abstraction for text generation.
type Provider interface {
	// Generate sends a prompt to the model and returns its text output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Messages is the conversation history. Single-turn generation passes
	// one user message; see Prompt.
	Messages []Message

	// MaxTokens caps the response length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64

	// TopK and TopP tune sampling. Zero means unset; providers that do
	// not support a knob ignore it.
	TopK float64
	TopP float64
}

// Prompt builds a single-turn request with the default generation
// parameters.
func Prompt(text string) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: text}},
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		TopK:        DefaultTopK,
		TopP:        DefaultTopP,
	}
}

// Generation defaults.
const (
	DefaultTemperature = 0.7
	DefaultTopK        = 40
	DefaultTopP        = 0.95
	DefaultMaxTokens   = 8192
)

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the model's output.
type Response struct {
	// Text is the first candidate's text.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a provider model ID. Names
// not in the map are used as-is.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
