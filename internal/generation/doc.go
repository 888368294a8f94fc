// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services. The Generator interface is the boundary to a
// provider (Gemini, OpenAI-compatible chat APIs); the Analyzer builds prompts
// from templates and parses the model's replies into domain values.
//
// Generators compose: Retrying retries transient failures with exponential
// backoff and RateLimited spaces calls out to stay under a provider quota.
package generation
