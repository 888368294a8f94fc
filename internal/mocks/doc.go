// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these standardized
// mock implementations can be reused across packages.
//
// Usage:
//
//	gen := &mocks.MockGenerator{
//	    GenerateFn: func(ctx context.Context, prompt string) (string, error) {
//	        return "标签：#go #queue", nil
//	    },
//	}
//	analyzer, _ := generation.NewAnalyzer(gen, generation.DefaultPrompts(), logger)
//
// When adding a new mock to this package, name the file after the interface being
// mocked and give the mock struct a function field for each interface method.
package mocks
