// Package openai implements generation.Generator over OpenAI-compatible chat
// completion endpoints. The same client serves any provider that speaks the
// OpenAI wire format (DeepSeek, Moonshot, Zhipu, Mistral) and also DashScope's
// native text-generation endpoint, whose request and reply shapes differ.
//
// Rate limiting (429) and server errors (5xx) wrap generation.ErrTransientFailure;
// other non-2xx replies are permanent failures.
package openai
