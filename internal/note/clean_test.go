package note

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses whitespace", "  Hello\n\n  world\t! ", "Hello world !"},
		{"ascii punctuation", "“Quoted” ‘single’ — dash…", `"Quoted" 'single' - dash...`},
		{"mixed scripts", "中文English混排123测试", "中文 English 混排 123 测试"},
		{"control and wide spaces", "a\x00b\u00a0c\u3000d\u200be", "ab c d e"},
		{"hyphenated line break kept", "multi-\nline", "multi- line"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}
