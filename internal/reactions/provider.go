// Package reactions synthesizes fictitious forum-style commentary for top
// posts via a hosted text-generation service. The service is an external
// collaborator: whatever it returns (or fails to return) is normalized
// into a complete Thread, so the batch never fails because of it.
package reactions

import (
	"context"
	"fmt"
)

// Provider is the interface every text-generation backend implements.
type Provider interface {
	// Synthesize asks the service for a fictitious reaction thread for
	// the given post title and category. The reply may be partial or
	// malformed-but-decodable; the caller normalizes it.
	Synthesize(ctx context.Context, title, category string) (*ThreadReply, error)
}

// ProviderConfig holds the configuration needed to create a provider.
type ProviderConfig struct {
	Provider string // "anthropic" | "openai"
	APIKey   string
	Model    string
}

// ThreadReply is the raw structured reply from the service. Pointer
// fields distinguish "absent" from zero so normalization can substitute
// deterministic defaults.
type ThreadReply struct {
	Board      string         `json:"board"`
	Popularity *int           `json:"popularity"`
	Comments   []CommentReply `json:"comments"`
}

// CommentReply is one raw comment entry from the service.
type CommentReply struct {
	No    int    `json:"no"`
	Text  string `json:"text"`
	Likes *int   `json:"likes"`
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported reactions provider: %s", cfg.Provider)
	}
}
