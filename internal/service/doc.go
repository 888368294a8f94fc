// Package service contains the note-processing use cases behind the CLI
// commands and the HTTP API.
//
// Each service combines three collaborators:
//
//   - a Notes store (normally *vault.Vault) to read and write markdown files
//   - an Analyzer (normally *generation.Analyzer) to call the AI provider
//   - the note package to render frontmatter, quotes and links
//
// Services know nothing about queues. The batch driver runs a service's
// ProcessFile once per file and the queue bounds how many run at a time, so every
// method must be safe for concurrent use. Files a service decides not to touch
// are reported with an error wrapping batch.ErrSkipped.
package service
