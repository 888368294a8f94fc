// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's analysis logic to Google's external Gemini AI
// service. Prompts arrive fully rendered; the adapter returns the raw text of
// the first candidate and translates API failures into the generation
// package's errors:
//
//   - request failures are wrapped with generation.ErrTransientFailure so that
//     generation.Retrying can retry them
//   - safety blocks become generation.ErrContentBlocked
//   - empty or malformed responses become generation.ErrInvalidResponse
//
// The package depends on Google's google.golang.org/genai client library.
package gemini
