package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// Line markers the model is asked to prefix each section with. Chinese markers
// may appear anywhere in a line; English ones must start it.
var (
	keywordMarkers = section{cjk: []string{"关键词：", "关键词:"}, latin: []string{"keywords:"}}
	summaryMarkers = section{cjk: []string{"总结：", "总结:"}, latin: []string{"summary:"}}
	tagMarkers     = section{cjk: []string{"标签：", "标签:"}, latin: []string{"tags:"}}
)

var (
	tagSeparator     = regexp.MustCompile(`[\s,，]+`)
	keywordSeparator = regexp.MustCompile(`[，,、]`)
)

type section struct {
	cjk   []string
	latin []string
}

// find returns the text following the first line carrying one of the markers.
func (s section) find(lines []string) (string, bool) {
	for _, line := range lines {
		for _, m := range s.cjk {
			if i := strings.Index(line, m); i >= 0 {
				return strings.TrimSpace(line[i+len(m):]), true
			}
		}

		trimmed := strings.TrimLeft(strings.TrimSpace(line), "-*# ")
		for _, m := range s.latin {
			if len(trimmed) >= len(m) && strings.EqualFold(trimmed[:len(m)], m) {
				return strings.TrimSpace(strings.TrimLeft(trimmed[len(m):], "*")), true
			}
		}
	}
	return "", false
}

// ParseAnalysis extracts keywords, summary and tags from a reply in the
// three-line format of DefaultAnalysisPrompt.
func ParseAnalysis(reply string) (domain.Analysis, error) {
	lines := strings.Split(reply, "\n")

	keywords, okK := keywordMarkers.find(lines)
	summary, okS := summaryMarkers.find(lines)
	tags, okT := tagMarkers.find(lines)

	var missing []string
	if !okK {
		missing = append(missing, "keywords")
	}
	if !okS {
		missing = append(missing, "summary")
	}
	if !okT {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return domain.Analysis{}, fmt.Errorf("%w: missing %s", ErrInvalidResponse, strings.Join(missing, ", "))
	}

	analysis := domain.Analysis{
		Keywords: splitKeywords(keywords),
		Summary:  cleanSummary(summary),
		Tags:     SplitTags(tags),
	}
	if err := analysis.Validate(); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return analysis, nil
}

// ParseTags extracts only the tag line from a reply.
func ParseTags(reply string) ([]string, error) {
	line, ok := tagMarkers.find(strings.Split(reply, "\n"))
	if !ok {
		return nil, fmt.Errorf("%w: missing tags", ErrInvalidResponse)
	}
	tags := SplitTags(line)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: empty tag list", ErrInvalidResponse)
	}
	return tags, nil
}

// SplitTags splits a tag line on whitespace and commas, drops leading '#'
// characters and removes duplicates while keeping order.
func SplitTags(line string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range tagSeparator.Split(line, -1) {
		t = strings.TrimLeft(strings.TrimSpace(t), "#")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

func splitKeywords(line string) []string {
	var out []string
	for _, k := range keywordSeparator.Split(line, -1) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "。")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}

// ParseMetadata decodes a JSON object reply and keeps the requested fields.
// A "tags" value given as a single string is split into a list.
func ParseMetadata(reply string, fields []domain.MetadataField) (map[string]any, error) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in metadata reply", ErrInvalidResponse)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponse, err)
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		v, ok := decoded[f.Key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && f.Key == "tags" {
			v = SplitTags(s)
		}
		out[f.Key] = v
	}

	if len(out) == 0 && len(fields) > 0 {
		return nil, fmt.Errorf("%w: none of the requested fields present", ErrInvalidResponse)
	}
	return out, nil
}

// ParseRewrite decodes a rewrite reply. Replies that are not the expected
// JSON object are taken as the rewritten content itself.
func ParseRewrite(reply string) (domain.Rewrite, error) {
	if strings.TrimSpace(reply) == "" {
		return domain.Rewrite{}, fmt.Errorf("%w: empty rewrite", ErrInvalidResponse)
	}

	if raw, ok := extractJSON(reply); ok {
		var rw domain.Rewrite
		if err := json.Unmarshal([]byte(raw), &rw); err == nil && rw.Validate() == nil {
			rw.Content = strings.TrimSpace(rw.Content)
			return rw, nil
		}
	}

	return domain.Rewrite{Content: strings.TrimSpace(stripFences(reply))}, nil
}

// extractJSON returns the outermost {...} span of reply, looking inside a
// markdown code fence when there is one.
func extractJSON(reply string) (string, bool) {
	body := stripFences(reply)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return body[start : end+1], true
}

func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	open := strings.Index(s, "```")
	if open < 0 {
		return s
	}
	rest := s[open+3:]
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	if closing := strings.LastIndex(rest, "```"); closing >= 0 {
		rest = rest[:closing]
	}
	return strings.TrimSpace(rest)
}
