// Streaming chat invocation.
//
// StreamChat models the provider response as a lazy, finite, non-restartable
// sequence of text fragments delivered over a channel. Failures never escape
// the sequence boundary: a configuration or transport error is converted into
// one final in-band marker fragment, then the channel closes. This keeps the
// consumer's buffering loop intact so partial output already flushed to the
// client is preserved and can still be persisted verbatim, marker included.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// streamTemperature favors natural conversational sampling for live chat.
const streamTemperature = 0.7

// ErrorMarker formats a failure as the in-band fragment appended to a chat
// stream. The marker text is part of the transcript: callers persist it along
// with whatever content preceded it.
func ErrorMarker(detail string) string {
	return fmt.Sprintf("\n\n[error] %s", detail)
}

// StreamChat issues a streaming chat completion and returns a channel of
// incremental fragments in emission order. The channel is closed at natural
// end of stream, after an in-band error marker, or once ctx is cancelled.
//
// Cancellation: when the consumer abandons the sequence (client disconnect),
// cancelling ctx releases the underlying transport; the goroutine never
// blocks forever on an unread channel because every send also selects on
// ctx.Done().
func (g *Gateway) StreamChat(ctx context.Context, req Request) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		start := time.Now()
		emit := func(fragment string) bool {
			select {
			case out <- fragment:
				return true
			case <-ctx.Done():
				return false
			}
		}

		client, err := g.newClient(req)
		if err != nil {
			observeStream("config_error", start)
			emit(ErrorMarker(err.Error()))
			return
		}

		stream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       req.Model,
			Messages:    buildMessages(req),
			Stream:      true,
			Temperature: streamTemperature,
		})
		if err != nil {
			observeStream("transport_error", start)
			emit(ErrorMarker(fmt.Sprintf("chat completion call failed: %v", err)))
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				observeStream("ok", start)
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					// Consumer went away; nothing to report into the stream.
					observeStream("cancelled", start)
					return
				}
				log.Warn().Err(err).Str("provider", req.Provider).Msg("llm stream interrupted")
				observeStream("transport_error", start)
				emit(ErrorMarker(fmt.Sprintf("chat completion call failed: %v", err)))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if delta := resp.Choices[0].Delta.Content; delta != "" {
				if !emit(delta) {
					observeStream("cancelled", start)
					return
				}
			}
		}
	}()

	return out
}
