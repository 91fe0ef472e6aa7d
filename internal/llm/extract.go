// Structured question extraction.
//
// LLM output format is inherently unreliable prose, so extraction tries the
// most structured interpretation first and degrades to looser pattern
// matching rather than failing outright: a JSON string array wins over a
// numbered list, which wins over a bulleted list. Empty or unparseable
// replies are retried up to the configured limit; total failure is reported
// with a truncated prefix of the last raw reply for diagnosis. The caller
// owns the final degradation step (template pool fallback), so extraction
// failures never reach an end user.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// extractMaxTokens bounds the non-streaming reply length.
	extractMaxTokens = 512
	// extractTemperature is deliberately elevated: diverse phrasing matters
	// more than determinism for suggested questions.
	extractTemperature = 1.0
	// rawReplyPreviewLimit caps the diagnostic prefix of the last raw reply.
	rawReplyPreviewLimit = 200
)

var (
	numberedItemRE = regexp.MustCompile(`^\s*\d+[.、]\s*(.+?)\s*$`)
	bulletItemRE   = regexp.MustCompile(`^\s*[-*•]\s*(.+?)\s*$`)
)

// SuggestQuestions issues non-streaming completion calls until one reply
// yields at least desiredCount extractable questions, making at most
// maxRetries+1 attempts. On success it returns up to desiredCount questions;
// on total failure the error carries the transport detail or a truncated
// preview of the last unparseable reply.
func (g *Gateway) SuggestQuestions(ctx context.Context, req Request, desiredCount, maxRetries int) ([]string, error) {
	if desiredCount < 1 {
		desiredCount = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	client, err := g.newClient(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       req.Model,
			Messages:    buildMessages(req),
			MaxTokens:   extractMaxTokens,
			Temperature: extractTemperature,
		})
		if err != nil {
			lastErr = fmt.Errorf("completion call failed: %w", err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		var content string
		if len(resp.Choices) > 0 {
			content = strings.TrimSpace(resp.Choices[0].Message.Content)
		}
		if content == "" {
			lastErr = fmt.Errorf("provider returned no content")
			continue
		}

		if questions, ok := ExtractQuestions(content, desiredCount); ok {
			observeExtract("ok", start)
			return questions, nil
		}
		lastErr = fmt.Errorf("reply did not match any parseable shape: %q", truncateRunes(content, rawReplyPreviewLimit))
	}

	observeExtract("failed", start)
	if lastErr == nil {
		lastErr = fmt.Errorf("no attempts were made")
	}
	return nil, lastErr
}

// ExtractQuestions parses free-form model output into up to desiredCount
// question strings using the ordered cascade; the first matching rule wins.
func ExtractQuestions(text string, desiredCount int) ([]string, bool) {
	if qs, ok := parseJSONStringArray(text, desiredCount); ok {
		return qs, true
	}
	if qs, ok := parseListLines(text, numberedItemRE, desiredCount); ok {
		return qs, true
	}
	if qs, ok := parseListLines(text, bulletItemRE, desiredCount); ok {
		return qs, true
	}
	return nil, false
}

// parseJSONStringArray locates the first bracketed span in text and decodes
// it as a JSON array. It succeeds only when every element is a string.
func parseJSONStringArray(text string, desiredCount int) ([]string, bool) {
	i := strings.Index(text, "[")
	if i < 0 {
		return nil, false
	}
	var arr []string
	dec := json.NewDecoder(strings.NewReader(text[i:]))
	if err := dec.Decode(&arr); err != nil || len(arr) == 0 {
		return nil, false
	}
	out := make([]string, 0, desiredCount)
	for _, q := range arr {
		if q = strings.TrimSpace(q); q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == desiredCount {
			break
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// parseListLines scans text line by line with the given item pattern and
// succeeds only when at least desiredCount items matched.
func parseListLines(text string, re *regexp.Regexp, desiredCount int) ([]string, bool) {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := re.FindStringSubmatch(line); m != nil {
			items = append(items, m[1])
		}
	}
	if len(items) < desiredCount {
		return nil, false
	}
	return items[:desiredCount], true
}

// truncateRunes clips s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
