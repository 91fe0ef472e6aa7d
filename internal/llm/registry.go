// Package llm implements the provider-agnostic gateway to OpenAI-compatible
// chat-completion APIs. It resolves provider endpoints from a fixed registry,
// builds per-request clients, streams chat completions as lazy fragment
// sequences, and extracts structured follow-up questions from free-form
// model output.
//
// This file defines the provider registry and the endpoint resolver.
//
// Resolution rules:
//   - A non-blank override wins for any provider: it is trimmed, stripped of
//     trailing slashes, and suffixed with "/v1" exactly once.
//   - Otherwise the provider key is looked up case-insensitively in the
//     registry. A default endpoint is returned verbatim; providers marked
//     RequiresExplicitEndpoint fail with ErrMissingEndpoint.
//   - Unknown providers fail with ErrUnconfiguredProvider. A registry entry
//     with neither a default nor the explicit-endpoint flag is an internal
//     invariant violation surfaced as ErrUnresolvableEndpoint.
//
// Configuration errors are deliberately surfaced before any network call:
// retrying a bad configuration is useless, so callers should treat them as
// terminal for the current request.
package llm

import (
	"errors"
	"strings"
)

// Resolver/registry error values. Handlers map these to user-facing
// configuration errors; none of them is retryable.
var (
	// ErrUnconfiguredProvider is returned for provider keys absent from the
	// registry.
	ErrUnconfiguredProvider = errors.New("llm provider is not configured; fill in the connection details in system settings")

	// ErrMissingEndpoint is returned when a provider requires an explicit
	// base URL and none was supplied.
	ErrMissingEndpoint = errors.New("llm provider requires a base URL; complete it in system settings and retry")

	// ErrUnresolvableEndpoint indicates a malformed registry entry (neither a
	// default endpoint nor the explicit-endpoint requirement). It should not
	// occur for well-formed registry entries.
	ErrUnresolvableEndpoint = errors.New("unable to resolve base URL; check the provider configuration")
)

// ProviderConfig is one immutable registry entry.
//
// For entries without an override, exactly one of DefaultEndpoint and
// RequiresExplicitEndpoint must be set; an entry with neither is a
// configuration bug caught by ResolveEndpoint.
type ProviderConfig struct {
	// Key is the canonical lower-case provider identifier, e.g. "deepseek".
	Key string
	// DefaultEndpoint is the base URL used when no override is supplied.
	// Assumed to already carry the correct "/v1" suffix.
	DefaultEndpoint string
	// RequiresExplicitEndpoint marks providers that cannot work without an
	// operator-supplied base URL (self-hosted or multi-tenant gateways).
	RequiresExplicitEndpoint bool
}

// providerRegistry is the closed set of supported providers. Unknown keys are
// an error case, not an extensibility hook.
var providerRegistry = map[string]ProviderConfig{
	"deepseek": {
		Key:             "deepseek",
		DefaultEndpoint: "https://api.deepseek.com/v1",
	},
	"qwen": {
		Key:             "qwen",
		DefaultEndpoint: "https://dashscope.aliyuncs.com/compatible-mode/v1",
	},
	"openai": {
		Key:             "openai",
		DefaultEndpoint: "https://api.openai.com/v1",
	},
	"openaiful": {
		Key:                      "openaiful",
		RequiresExplicitEndpoint: true,
	},
	"dify": {
		Key:                      "dify",
		RequiresExplicitEndpoint: true,
	},
}

// Providers returns the registry entries keyed by canonical provider key.
// The returned map is a copy; mutating it does not affect resolution.
func Providers() map[string]ProviderConfig {
	out := make(map[string]ProviderConfig, len(providerRegistry))
	for k, v := range providerRegistry {
		out[k] = v
	}
	return out
}

// NormalizeEndpoint cleans a raw base URL: surrounding whitespace and
// trailing slashes are removed and the "/v1" API version segment is appended
// unless already present. Normalization is idempotent.
func NormalizeEndpoint(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimRight(cleaned, "/")
	if cleaned == "" {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(cleaned), "/v1") {
		cleaned += "/v1"
	}
	return cleaned
}

// ResolveEndpoint computes the base URL for a provider. A non-blank override
// is normalized and returned regardless of provider; otherwise the registry
// decides per the package rules above.
func ResolveEndpoint(provider, override string) (string, error) {
	if strings.TrimSpace(override) != "" {
		return NormalizeEndpoint(override), nil
	}

	cfg, ok := providerRegistry[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return "", ErrUnconfiguredProvider
	}
	if cfg.DefaultEndpoint != "" {
		return cfg.DefaultEndpoint, nil
	}
	if cfg.RequiresExplicitEndpoint {
		return "", ErrMissingEndpoint
	}
	return "", ErrUnresolvableEndpoint
}
