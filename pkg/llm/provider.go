package llm

import (
	"context"
)

// Message is one turn of a conversation in provider-neutral form.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option tunes a single generation call.
type Option func(*Options)

type Options struct {
	Temperature float64
}

// WithTemperature sets the sampling temperature for one call. Grounded
// answering wants this low; zero means the provider's default.
func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// LLMProvider is the generation backend behind the chat engine.
type LLMProvider interface {
	// Chat sends a conversation to the model and returns its reply.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate answers a single prompt.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
