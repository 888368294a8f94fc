package note

import (
	"strings"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// RewriteContent renders the note holding a rewrite of original. The original
// frontmatter is carried over and the source note is linked at the top.
func RewriteContent(original string, rw domain.Rewrite, sourceName string) string {
	var parts []string

	if front, _, ok := Split(original); ok {
		parts = append(parts, delimiter+"\n"+front+"\n"+delimiter)
	}

	parts = append(parts,
		"> [!info] Original\n> [["+sourceName+"|View original]]",
		strings.TrimSpace(rw.Content),
	)

	if len(rw.Changes) > 0 {
		parts = append(parts, "---\n### Changes\n"+bulletList(rw.Changes))
	}
	if len(rw.Suggestions) > 0 {
		parts = append(parts, "### Suggestions\n"+bulletList(rw.Suggestions))
	}

	return strings.Join(parts, "\n\n") + "\n"
}

// RewriteLink is appended to the source note of a rewrite.
func RewriteLink(rewriteName string) string {
	return "[[" + rewriteName + "|View rewrite]]"
}

// AppendRewriteLink adds a related-notes footer linking to the rewrite.
func AppendRewriteLink(content, rewriteName string) string {
	link := RewriteLink(rewriteName)
	if strings.Contains(content, link) {
		return content
	}
	return strings.TrimRight(content, "\n") + "\n\n---\n### Related notes\n- " + link + "\n"
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	return strings.Join(lines, "\n")
}
