package note

import (
	"path"
	"strings"
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// SummarySuffix is appended to the folder name to name its summary note.
const SummarySuffix = "-summary"

// FolderName returns the display name of a vault folder.
func FolderName(folder string) string {
	name := path.Base(strings.Trim(folder, "/"))
	if name == "." || name == "" {
		return "vault"
	}
	return name
}

// SummaryPath returns where the summary note of folder is written.
func SummaryPath(folder string) string {
	return path.Join(folder, FolderName(folder)+SummarySuffix+".md")
}

// FolderSummary renders the summary note of folder from a combined analysis of
// the notes at paths.
func FolderSummary(folder string, a domain.Analysis, paths []string, now time.Time) (string, error) {
	fm := NewFrontmatter()
	fm.SetPlain("created", now.Format(time.RFC3339))
	if err := fm.Set("type", "summary"); err != nil {
		return "", err
	}
	if err := fm.Set("folder", folder); err != nil {
		return "", err
	}
	if err := fm.Set("keywords", strings.Join(a.Keywords, ", ")); err != nil {
		return "", err
	}
	if err := fm.Set("tags", a.Tags); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# " + FolderName(folder) + " folder summary\n\n")

	b.WriteString("## Core themes\n")
	b.WriteString(bulletList(a.Keywords))
	b.WriteString("\n\n## Main points\n")
	b.WriteString(a.Summary)
	b.WriteString("\n\n## Knowledge structure\n")
	b.WriteString(knowledgeStructure(a))
	b.WriteString("\n\n## Included notes\n")

	links := make([]string, 0, len(paths))
	for _, p := range paths {
		links = append(links, "[["+baseName(p)+"]]")
	}
	b.WriteString(bulletList(links))
	b.WriteString("\n")

	return Compose(fm, b.String())
}

// knowledgeStructure lists each tag with the keywords that mention it.
func knowledgeStructure(a domain.Analysis) string {
	lines := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		lines = append(lines, "- "+tag)
		lower := strings.ToLower(tag)
		for _, k := range a.Keywords {
			if strings.Contains(strings.ToLower(k), lower) {
				lines = append(lines, "  - "+k)
			}
		}
	}
	return strings.Join(lines, "\n")
}
