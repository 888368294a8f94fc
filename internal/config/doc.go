// Package config handles configuration loading, parsing, and validation
// from defaults, an optional YAML file and SMARTEXTRACT_-prefixed environment
// variables. It provides type-safe access to settings needed by the task queue,
// the batch driver, the AI providers and the note writers, and can watch the
// config file so concurrency and pacing changes reach a running process.
package config
