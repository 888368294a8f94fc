package generation

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

// DefaultAnalysisPrompt asks for keywords, a one-line summary and tags, in the
// line format ParseAnalysis understands.
const DefaultAnalysisPrompt = `请分析以下文本，提供：
1. 3-5个关键词
2. 一句话总结（15字以内，不要加句号）
3. 将关键词转换为3-5个相关标签（每个标签以#开头）

请按照以下格式返回：
关键词：关键词1，关键词2，关键词3
总结：一句话总结
标签：#标签1 #标签2 #标签3

原文：
{text}`

// DefaultMetadataPrompt asks for one JSON value per AI metadata field.
const DefaultMetadataPrompt = `Read the note below and fill in the following frontmatter fields.

Fields:
{fields}

Reply with a single JSON object whose keys are exactly the field names above.
Use a JSON array of strings for list values such as tags. Do not add any other text.

Note:
{text}`

// DefaultRewritePrompt asks for an improved version of a note as JSON.
const DefaultRewritePrompt = `Rewrite the note below so that it is clearer and better structured.
Keep its language, meaning and markdown formatting.

Reply with a single JSON object:
{"content": "<rewritten note>", "changes": ["<what you changed>"], "suggestions": ["<further improvements>"]}

Note:
{text}`

// DefaultSummaryPrompt asks for a combined analysis of several notes.
const DefaultSummaryPrompt = `请阅读以下{count}篇笔记，总结它们的共同主题，并提供：
1. 3-8个核心关键词
2. 一段概括主要观点的总结
3. 3-8个相关标签（每个标签以#开头）

请按照以下格式返回：
关键词：关键词1，关键词2，关键词3
总结：总结内容
标签：#标签1 #标签2 #标签3

笔记：
{notes}`

// Prompts holds the templates used by an Analyzer. A template either uses
// brace placeholders ({text}, {fields}, {count}, {notes}) or Go template
// actions ({{.Text}}, {{.Fields}}, {{.Count}}, {{.Notes}}).
type Prompts struct {
	Analysis string
	Tags     string
	Metadata string
	Rewrite  string
	Summary  string
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Analysis: DefaultAnalysisPrompt,
		Tags:     DefaultAnalysisPrompt,
		Metadata: DefaultMetadataPrompt,
		Rewrite:  DefaultRewritePrompt,
		Summary:  DefaultSummaryPrompt,
	}
}

// LoadPrompts returns the default templates with the analysis and tag
// templates replaced by the file at path. An empty path yields the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			ErrInvalidConfig, path, err)
	}

	tmpl := string(content)
	if !strings.Contains(tmpl, "{text}") && !strings.Contains(tmpl, ".Text") {
		return Prompts{}, fmt.Errorf("%w: prompt template %s has no {text} placeholder",
			ErrInvalidConfig, path)
	}
	if _, err := render(tmpl, promptData{}); err != nil {
		return Prompts{}, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	prompts.Analysis = tmpl
	prompts.Tags = tmpl
	return prompts, nil
}

// promptData is the data available to a prompt template.
type promptData struct {
	Text   string
	Fields string
	Count  int
	Notes  string
}

// render fills a prompt template. Templates containing "{{" are executed with
// text/template; all others get simple placeholder substitution.
func render(tmpl string, data promptData) (string, error) {
	if strings.Contains(tmpl, "{{") {
		t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
		if err != nil {
			return "", fmt.Errorf("failed to parse prompt template: %w", err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("failed to execute prompt template: %w", err)
		}
		return buf.String(), nil
	}

	r := strings.NewReplacer(
		"{text}", data.Text,
		"{fields}", data.Fields,
		"{count}", fmt.Sprint(data.Count),
		"{notes}", data.Notes,
	)
	return r.Replace(tmpl), nil
}
