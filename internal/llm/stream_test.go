package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// sseChunk formats one streaming delta event.
func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"x","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func streamServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl, _ := w.(http.Flusher)
		for _, c := range chunks {
			fmt.Fprint(w, sseChunk(c))
			if fl != nil {
				fl.Flush()
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func collect(ch <-chan string) []string {
	var out []string
	for f := range ch {
		out = append(out, f)
	}
	return out
}

func TestStreamChat_FragmentsInOrder(t *testing.T) {
	srv := streamServer(t, "He", "llo", ", world")
	defer srv.Close()

	g := NewGateway(0)
	got := collect(g.StreamChat(context.Background(), Request{
		Provider: "openaiful",
		APIKey:   "k",
		Model:    "m",
		BaseURL:  srv.URL,
	}))

	if strings.Join(got, "") != "Hello, world" {
		t.Fatalf("concatenation mismatch: %q", strings.Join(got, ""))
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 fragments, got %d: %v", len(got), got)
	}
}

func TestStreamChat_ConfigErrorYieldsMarker(t *testing.T) {
	g := NewGateway(0)
	got := collect(g.StreamChat(context.Background(), Request{
		Provider: "unknown-provider",
		APIKey:   "k",
		Model:    "m",
	}))

	if len(got) != 1 {
		t.Fatalf("expected exactly one marker fragment, got %v", got)
	}
	if !strings.HasPrefix(got[0], "\n\n[error] ") {
		t.Fatalf("fragment is not an error marker: %q", got[0])
	}
}

func TestStreamChat_TransportErrorYieldsMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"no such model"}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewGateway(0)
	got := collect(g.StreamChat(context.Background(), Request{
		Provider: "openaiful",
		APIKey:   "k",
		Model:    "m",
		BaseURL:  srv.URL,
	}))

	if len(got) != 1 || !strings.Contains(got[0], "[error] ") {
		t.Fatalf("expected a single error marker, got %v", got)
	}
}

func TestStreamChat_ChannelClosesAfterMarker(t *testing.T) {
	g := NewGateway(0)
	ch := g.StreamChat(context.Background(), Request{Provider: "nope"})

	<-ch // marker
	select {
	case _, open := <-ch:
		if open {
			t.Fatalf("expected channel to close after the marker")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel did not close")
	}
}

func TestStreamChat_CancelUnblocksProducer(t *testing.T) {
	// Server that streams forever until the client goes away.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fl, _ := w.(http.Flusher)
		for i := 0; ; i++ {
			if _, err := fmt.Fprint(w, sseChunk("x")); err != nil {
				return
			}
			if fl != nil {
				fl.Flush()
			}
			select {
			case <-r.Context().Done():
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	g := NewGateway(0)
	ch := g.StreamChat(ctx, Request{
		Provider: "openaiful",
		APIKey:   "k",
		Model:    "m",
		BaseURL:  srv.URL,
	})

	// Read one fragment, then abandon the stream.
	<-ch
	cancel()

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("producer did not exit after cancellation")
	}
}

func TestErrorMarker(t *testing.T) {
	m := ErrorMarker("boom")
	if m != "\n\n[error] boom" {
		t.Fatalf("got %q", m)
	}
}
