// Package vault stores markdown notes under a root directory. Paths handed to a
// Vault are relative to the root, use forward slashes and may not escape it.
// The filesystem is an afero.Fs so tests can run against memory.
package vault
