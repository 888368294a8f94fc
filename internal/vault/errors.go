package vault

import "errors"

// Errors returned by Vault operations
var (
	ErrOutsideVault = errors.New("path escapes the vault root")
	ErrNotFound     = errors.New("note not found")
	ErrExists       = errors.New("note already exists")
	ErrNotDirectory = errors.New("not a folder")
)
