package generation

import "context"

// Generator defines the interface for obtaining a completion from a language model.
// This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Generator interface {
	// Generate sends prompt to the model and returns the raw text of its reply.
	// Implementations wrap provider failures with ErrTransientFailure when a
	// retry may succeed, and with ErrContentBlocked or ErrInvalidResponse otherwise.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
