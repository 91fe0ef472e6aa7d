// Client factory for the LLM gateway.
//
// Clients are cheap, stateless values bound to one (endpoint, credential)
// pair and are built per request: settings may change between requests, so
// nothing here is cached. Connection pooling is left to the shared transport
// of the injected *http.Client and is not a correctness requirement.
package llm

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Role values accepted on gateway turns, mirroring the wire protocol.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message handed to the provider.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything needed for one gateway call. It is ephemeral:
// constructed by the caller, never persisted, and owned exclusively by the
// call that created it.
type Request struct {
	// Provider is the registry key, matched case-insensitively.
	Provider string
	// APIKey is the bearer credential for the provider.
	APIKey string
	// Model is the provider-side model identifier.
	Model string
	// BaseURL optionally overrides the registry endpoint.
	BaseURL string
	// SystemPrompt is prepended as a system-role turn before dispatch.
	SystemPrompt string
	// Turns are the prior user/assistant turns, oldest first.
	Turns []Turn
}

// Gateway issues chat-completion calls against whichever provider a Request
// names. The zero value is not usable; construct with NewGateway.
type Gateway struct {
	// httpClient is shared by all per-request API clients so outbound calls
	// get a bounded connect/read timeout.
	httpClient *http.Client
}

// NewGateway returns a Gateway whose outbound calls time out after
// requestTimeout (zero means no deadline beyond context cancellation).
func NewGateway(requestTimeout time.Duration) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// newClient resolves the endpoint for req and builds a client bound to it.
// Resolver errors are propagated unchanged.
func (g *Gateway) newClient(req Request) (*openai.Client, error) {
	endpoint, err := ResolveEndpoint(req.Provider, req.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg := openai.DefaultConfig(req.APIKey)
	cfg.BaseURL = endpoint
	if g.httpClient != nil {
		cfg.HTTPClient = g.httpClient
	}
	return openai.NewClientWithConfig(cfg), nil
}

// buildMessages prepends the system prompt to the prior turns in wire format.
func buildMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Turns)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    RoleSystem,
		Content: req.SystemPrompt,
	})
	for _, t := range req.Turns {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    t.Role,
			Content: t.Content,
		})
	}
	return msgs
}
