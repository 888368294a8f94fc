package note

// SetTags replaces the tags list in the note's frontmatter, adding the key or
// the whole frontmatter block when missing.
func SetTags(content string, tags []string) (string, error) {
	doc, err := Parse(content)
	if err != nil {
		return "", err
	}
	if err := doc.Front.Set("tags", tags); err != nil {
		return "", err
	}
	return doc.String()
}

// HasTags reports whether the note's frontmatter carries a non-empty tags value.
// Notes with unreadable frontmatter report false.
func HasTags(content string) bool {
	doc, err := Parse(content)
	if err != nil {
		return false
	}
	v, ok := doc.Front.Get("tags")
	if !ok {
		return false
	}
	switch t := v.(type) {
	case []any:
		return len(t) > 0
	case string:
		return t != ""
	default:
		return t != nil
	}
}
