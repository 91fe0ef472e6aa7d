package llm

import (
	"errors"
	"testing"
)

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"https://api.example.com", "https://api.example.com/v1"},
		{"https://api.example.com/", "https://api.example.com/v1"},
		{"https://api.example.com///", "https://api.example.com/v1"},
		{"https://api.example.com/v1", "https://api.example.com/v1"},
		{"https://api.example.com/v1/", "https://api.example.com/v1"},
		{"https://api.example.com/V1", "https://api.example.com/V1"}, // case-insensitive suffix check
		{"  https://api.example.com  ", "https://api.example.com/v1"},
	}
	for _, tc := range cases {
		if got := NormalizeEndpoint(tc.in); got != tc.want {
			t.Fatalf("NormalizeEndpoint(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEndpoint_Idempotent(t *testing.T) {
	inputs := []string{
		"https://api.example.com",
		"https://api.example.com/v1",
		"https://gateway.internal:8443/openai/",
	}
	for _, in := range inputs {
		once := NormalizeEndpoint(in)
		twice := NormalizeEndpoint(once)
		if once != twice {
			t.Fatalf("NormalizeEndpoint not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestResolveEndpoint_Defaults(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"deepseek", "https://api.deepseek.com/v1"},
		{"qwen", "https://dashscope.aliyuncs.com/compatible-mode/v1"},
		{"openai", "https://api.openai.com/v1"},
		{"DeepSeek", "https://api.deepseek.com/v1"}, // case-insensitive key
		{"  openai  ", "https://api.openai.com/v1"},
	}
	for _, tc := range cases {
		got, err := ResolveEndpoint(tc.provider, "")
		if err != nil {
			t.Fatalf("ResolveEndpoint(%q): unexpected error %v", tc.provider, err)
		}
		if got != tc.want {
			t.Fatalf("ResolveEndpoint(%q) = %q; want %q", tc.provider, got, tc.want)
		}
	}
}

func TestResolveEndpoint_OverrideWins(t *testing.T) {
	got, err := ResolveEndpoint("deepseek", "https://proxy.corp.example/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://proxy.corp.example/v1" {
		t.Fatalf("override not applied: got %q", got)
	}

	// Even providers that normally require an endpoint resolve with one.
	got, err = ResolveEndpoint("dify", "https://dify.internal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://dify.internal/v1" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveEndpoint_Errors(t *testing.T) {
	if _, err := ResolveEndpoint("nonexistent", ""); !errors.Is(err, ErrUnconfiguredProvider) {
		t.Fatalf("want ErrUnconfiguredProvider, got %v", err)
	}
	if _, err := ResolveEndpoint("openaiful", ""); !errors.Is(err, ErrMissingEndpoint) {
		t.Fatalf("want ErrMissingEndpoint for openaiful, got %v", err)
	}
	if _, err := ResolveEndpoint("dify", "   "); !errors.Is(err, ErrMissingEndpoint) {
		t.Fatalf("want ErrMissingEndpoint for dify with blank override, got %v", err)
	}
}

func TestProviders_ReturnsCopy(t *testing.T) {
	m := Providers()
	if len(m) != 5 {
		t.Fatalf("expected 5 registry entries, got %d", len(m))
	}
	delete(m, "deepseek")
	if _, err := ResolveEndpoint("deepseek", ""); err != nil {
		t.Fatalf("mutating the returned map must not affect resolution: %v", err)
	}
}
