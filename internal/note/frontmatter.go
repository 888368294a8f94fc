package note

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontmatter is returned when a note's frontmatter is not a YAML mapping.
var ErrInvalidFrontmatter = errors.New("invalid frontmatter")

const delimiter = "---"

// Split separates a leading frontmatter block from content. front excludes the
// delimiter lines; body is everything after the closing delimiter line.
func Split(content string) (front, body string, ok bool) {
	if !strings.HasPrefix(content, delimiter+"\n") {
		return "", content, false
	}
	rest := content[len(delimiter)+1:]

	if rest == delimiter {
		return "", "", true
	}
	if strings.HasPrefix(rest, delimiter+"\n") {
		return "", rest[len(delimiter)+1:], true
	}

	search := 0
	for {
		i := strings.Index(rest[search:], "\n"+delimiter)
		if i < 0 {
			return "", content, false
		}
		i += search
		end := i + 1 + len(delimiter)
		switch {
		case end == len(rest):
			return rest[:i], "", true
		case rest[end] == '\n':
			return rest[:i], rest[end+1:], true
		case strings.HasPrefix(rest[end:], "\r\n"):
			return rest[:i], rest[end+2:], true
		}
		search = end
	}
}

// StripFrontmatter returns the trimmed body of content.
func StripFrontmatter(content string) string {
	_, body, _ := Split(content)
	return strings.TrimSpace(body)
}

// Frontmatter is an ordered YAML mapping.
type Frontmatter struct {
	root *yaml.Node
}

// NewFrontmatter returns an empty mapping.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{root: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func parseFrontmatter(front string) (*Frontmatter, error) {
	if strings.TrimSpace(front) == "" {
		return NewFrontmatter(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(front), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: not a mapping", ErrInvalidFrontmatter)
	}
	return &Frontmatter{root: doc.Content[0]}, nil
}

func (f *Frontmatter) index(key string) int {
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		if f.root.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// Len returns the number of keys.
func (f *Frontmatter) Len() int {
	return len(f.root.Content) / 2
}

// Keys returns the keys in document order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, f.Len())
	for i := 0; i+1 < len(f.root.Content); i += 2 {
		keys = append(keys, f.root.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present, even with a null value.
func (f *Frontmatter) Has(key string) bool {
	return f.index(key) >= 0
}

// Get decodes the value of key.
func (f *Frontmatter) Get(key string) (any, bool) {
	i := f.index(key)
	if i < 0 {
		return nil, false
	}
	var v any
	if err := f.root.Content[i+1].Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// Raw returns the literal text of a scalar value.
func (f *Frontmatter) Raw(key string) (string, bool) {
	i := f.index(key)
	if i < 0 || f.root.Content[i+1].Kind != yaml.ScalarNode {
		return "", false
	}
	return f.root.Content[i+1].Value, true
}

// Set stores value under key, replacing any existing value in place.
func (f *Frontmatter) Set(key string, value any) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("failed to encode frontmatter field %s: %w", key, err)
	}
	f.setNode(key, &n)
	return nil
}

// SetPlain stores value as an untagged scalar so dates stay unquoted.
func (f *Frontmatter) SetPlain(key, value string) {
	f.setNode(key, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
}

func (f *Frontmatter) setNode(key string, n *yaml.Node) {
	if i := f.index(key); i >= 0 {
		f.root.Content[i+1] = n
		return
	}
	f.root.Content = append(f.root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		n,
	)
}

// Render encodes the mapping as YAML without delimiters. An empty mapping
// renders as "".
func (f *Frontmatter) Render() (string, error) {
	if f.Len() == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.root); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	return buf.String(), nil
}

// Document is a note split into frontmatter and body.
type Document struct {
	Front *Frontmatter
	Body  string

	hadFront bool
}

// Parse splits content into a Document. Content without frontmatter yields an
// empty mapping and the whole content as body.
func Parse(content string) (*Document, error) {
	front, body, ok := Split(content)
	if !ok {
		return &Document{Front: NewFrontmatter(), Body: content}, nil
	}

	fm, err := parseFrontmatter(front)
	if err != nil {
		return nil, err
	}
	return &Document{Front: fm, Body: body, hadFront: true}, nil
}

// String renders the document. The body is kept byte for byte; a frontmatter
// block added to a note that had none is followed by a blank line.
func (d *Document) String() (string, error) {
	if !d.hadFront && d.Front.Len() == 0 {
		return d.Body, nil
	}

	y, err := d.Front.Render()
	if err != nil {
		return "", err
	}

	sep := ""
	if !d.hadFront {
		sep = "\n"
	}
	return delimiter + "\n" + y + delimiter + "\n" + sep + d.Body, nil
}

// Compose renders front followed by a blank line and body.
func Compose(front *Frontmatter, body string) (string, error) {
	y, err := front.Render()
	if err != nil {
		return "", err
	}
	return delimiter + "\n" + y + delimiter + "\n\n" + body, nil
}
