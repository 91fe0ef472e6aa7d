// Provider model listing and connectivity checks, used by the admin surface
// to validate settings before they are saved.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoModels is returned when the provider answers the model listing with an
// empty array; zero results is treated as failure, not success.
var ErrNoModels = errors.New("no models available; check the API key and its permissions")

// ModelInfo describes one model advertised by a provider.
type ModelInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ListModels fetches the provider's model catalogue. Only Provider, APIKey
// and BaseURL of req are consulted.
func (g *Gateway) ListModels(ctx context.Context, req Request) ([]ModelInfo, error) {
	client, err := g.newClient(req)
	if err != nil {
		return nil, err
	}

	resp, err := client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models failed: %w", err)
	}

	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, ModelInfo{
			ID:      m.ID,
			Name:    m.ID,
			OwnedBy: m.OwnedBy,
		})
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	return models, nil
}

// TestConnection issues one tiny non-streaming completion to verify that the
// (provider, credential, model) triple is usable. A nil error means the model
// responded.
func (g *Gateway) TestConnection(ctx context.Context, req Request) error {
	client, err := g.newClient(req)
	if err != nil {
		return err
	}

	_, err = client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: RoleUser, Content: "Hello"},
		},
		MaxTokens: 10,
	})
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}
