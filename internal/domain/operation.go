package domain

import "fmt"

// Operation names a kind of AI processing applied to notes.
type Operation string

// Supported operations
const (
	OperationExtract   Operation = "extract"
	OperationTag       Operation = "tag"
	OperationMetadata  Operation = "metadata"
	OperationRewrite   Operation = "rewrite"
	OperationSummarize Operation = "summarize"
)

// ParseOperation converts a user-supplied name into an Operation.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	switch op {
	case OperationExtract, OperationTag, OperationMetadata, OperationRewrite, OperationSummarize:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// IsBatch reports whether the operation processes a folder one file at a time.
func (o Operation) IsBatch() bool {
	return o == OperationTag || o == OperationMetadata || o == OperationRewrite
}
