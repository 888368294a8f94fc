package note

import (
	"strings"
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// Timestamp keys added when MetadataOptions.IncludeTimestamp is set.
const (
	CreatedTimestampKey  = "createdTimestamp"
	ModifiedTimestampKey = "modifiedTimestamp"
)

// SystemInfo is what the filesystem knows about a note.
type SystemInfo struct {
	Path     string
	Created  time.Time
	Modified time.Time
}

// MetadataOptions control MergeMetadata.
type MetadataOptions struct {
	Fields []domain.MetadataField
	// DateFormat is a moment.js-style format, e.g. "YYYY-MM-DD".
	DateFormat       string
	IncludeTimestamp bool
}

// HasRequiredMetadata reports whether every required field is already present.
func HasRequiredMetadata(content string, fields []domain.MetadataField) (bool, error) {
	doc, err := Parse(content)
	if err != nil {
		return false, err
	}

	required := 0
	for _, f := range fields {
		if !f.Required {
			continue
		}
		required++
		if !doc.Front.Has(f.Key) {
			return false, nil
		}
	}
	return required > 0, nil
}

// MergeMetadata writes AI values, system values and reformatted dates into the
// note's frontmatter. Existing keys not named by a field are kept. A created
// field that is already set keeps its value, since the filesystem cannot tell
// the true creation time. The body is trimmed and separated from the
// frontmatter by a blank line.
func MergeMetadata(content string, ai map[string]any, info SystemInfo, opts MetadataOptions) (string, error) {
	doc, err := Parse(content)
	if err != nil {
		return "", err
	}
	fm := doc.Front
	layout := GoLayout(opts.DateFormat)

	for _, f := range opts.Fields {
		switch f.Type {
		case domain.FieldTypeAI:
			if v, ok := ai[f.Key]; ok {
				if err := fm.Set(f.Key, v); err != nil {
					return "", err
				}
			}

		case domain.FieldTypeSystem:
			source := f.SystemField
			if source == "" {
				source = f.Key
			}
			switch source {
			case domain.SystemFieldCreated:
				if !fm.Has(f.Key) {
					fm.SetPlain(f.Key, info.Created.Format(layout))
				}
			case domain.SystemFieldModified:
				fm.SetPlain(f.Key, info.Modified.Format(layout))
			case domain.SystemFieldPath:
				if err := fm.Set(f.Key, info.Path); err != nil {
					return "", err
				}
			}

		case domain.FieldTypeDate:
			if raw, ok := fm.Raw(f.Key); ok {
				if t, ok := parseDate(raw, layout); ok {
					fm.SetPlain(f.Key, t.Format(layout))
				}
			}
		}
	}

	if opts.IncludeTimestamp {
		if err := fm.Set(CreatedTimestampKey, info.Created.UnixMilli()); err != nil {
			return "", err
		}
		if err := fm.Set(ModifiedTimestampKey, info.Modified.UnixMilli()); err != nil {
			return "", err
		}
	}

	return Compose(fm, strings.TrimSpace(doc.Body))
}
