package note

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// Backlink styles
const (
	BacklinkWiki = "wiki"
	BacklinkRef  = "ref"
)

const (
	// CreatedLayout formats the created field of new notes.
	CreatedLayout = "2006-01-02 15:04:05"
	// FileTimeLayout prefixes the file names of new notes.
	FileTimeLayout = "20060102150405"

	// RelatedHeading starts the section backlinks are added to.
	RelatedHeading = "## Related notes"
	// QuoteHeading precedes the quoted selection in a new note.
	QuoteHeading = "## Quote"

	maxNameRunes = 80
)

// relatedHeadings are recognized when adding backlinks; the second is written
// by the Obsidian plugin this tool grew out of.
var relatedHeadings = []string{RelatedHeading, "## 相关笔记"}

var (
	unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|#^\[\]]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Style controls how new notes quote and link.
type Style struct {
	BacklinkStyle    string
	QuoteCallout     string
	QuoteCollapsible bool
	TargetFolder     string
}

// Build renders a new note for an analyzed selection.
func Build(sel domain.Selection, a domain.Analysis, style Style, now time.Time) (string, error) {
	fm := NewFrontmatter()
	fm.SetPlain("created", now.Format(CreatedLayout))
	if err := fm.Set("keywords", strings.Join(a.Keywords, ", ")); err != nil {
		return "", err
	}
	if err := fm.Set("tags", a.Tags); err != nil {
		return "", err
	}

	body := []string{
		"# " + a.Summary,
		"",
		QuoteHeading,
		"",
		Quote(sel.Text, style.QuoteCallout, style.QuoteCollapsible),
		"",
	}
	if sel.SourcePath != "" {
		body = append(body, "source: "+SourceLink(style.BacklinkStyle, sel.SourcePath), "")
	}
	body = append(body, RelatedHeading, "")

	return Compose(fm, strings.Join(body, "\n"))
}

// Quote renders text as an Obsidian callout.
func Quote(text, callout string, collapsible bool) string {
	if callout == "" {
		callout = "cite"
	}
	fold := ""
	if collapsible {
		fold = "-"
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]string, 0, len(lines)+1)
	out = append(out, fmt.Sprintf("> [!%s]%s Quote", callout, fold))
	for _, l := range lines {
		out = append(out, "> "+l)
	}
	return strings.Join(out, "\n")
}

// FileName returns the name, without extension, for a note summarizing summary.
func FileName(summary string, now time.Time) string {
	name := unsafeNameChars.ReplaceAllString(summary, "")
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-")
	if r := []rune(name); len(r) > maxNameRunes {
		name = string(r[:maxNameRunes])
	}
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "note"
	}
	return now.Format(FileTimeLayout) + "-" + name
}

func baseName(p string) string {
	b := path.Base(p)
	return strings.TrimSuffix(b, path.Ext(b))
}

// SourceLink links to the note at sourcePath.
func SourceLink(style, sourcePath string) string {
	name := baseName(sourcePath)
	if style == BacklinkRef {
		return fmt.Sprintf("[%s](%s)", name, sourcePath)
	}
	return "[[" + name + "]]"
}

// NoteLink links to the note called name in folder.
func NoteLink(style, folder, name string) string {
	if style == BacklinkRef {
		return fmt.Sprintf("[%s](%s)", name, path.Join(folder, name+".md"))
	}
	return "[[" + name + "]]"
}

// AddBacklink lists link under the note's related-notes heading, adding the
// heading at the end when there is none. A link already present is not repeated.
func AddBacklink(content, link string) string {
	if strings.Contains(content, link) {
		return content
	}
	for _, h := range relatedHeadings {
		marker := h + "\n"
		if i := strings.Index(content, marker); i >= 0 {
			at := i + len(marker)
			return content[:at] + link + "\n" + content[at:]
		}
	}
	return content + "\n" + RelatedHeading + "\n" + link + "\n"
}
