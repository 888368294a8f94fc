package config

import (
	"time"

	"github.com/phrazzld/smart-extract/internal/domain"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Vault    VaultConfig    `mapstructure:"vault"`
	Notes    NotesConfig    `mapstructure:"notes"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Rewrite  RewriteConfig  `mapstructure:"rewrite"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
}

// LogConfig controls the process-wide structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	APIKey   string `mapstructure:"api_key"`
	// Endpoint overrides the provider's default URL. OpenAI-compatible services
	// such as DeepSeek, Moonshot or DashScope are reached this way.
	Endpoint           string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Model              string        `mapstructure:"model"`
	PromptTemplatePath string        `mapstructure:"prompt_template_path"`
	MaxRetries         int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelay         time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	RequestsPerMinute  int           `mapstructure:"requests_per_minute" validate:"gte=0"`
	Timeout            time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// VaultConfig locates the notes on disk.
type VaultConfig struct {
	Root         string `mapstructure:"root" validate:"required"`
	TargetFolder string `mapstructure:"target_folder" validate:"required"`
}

// NotesConfig shapes the notes created from selections.
type NotesConfig struct {
	AddBacklinks     bool   `mapstructure:"add_backlinks"`
	BacklinkStyle    string `mapstructure:"backlink_style" validate:"required,oneof=wiki ref"`
	QuoteCallout     string `mapstructure:"quote_callout" validate:"required"`
	QuoteCollapsible bool   `mapstructure:"quote_collapsible"`
	// OpenInNewTab is kept for settings compatibility; the CLI has no editor to open.
	OpenInNewTab     bool `mapstructure:"open_in_new_tab"`
	SkipExistingTags bool `mapstructure:"skip_existing_tags"`
}

// BatchConfig is copied into the task queue and batch driver before each run.
type BatchConfig struct {
	MaxConcurrent     int           `mapstructure:"max_concurrent" validate:"gte=1,lte=64"`
	DelayBetweenFiles time.Duration `mapstructure:"delay_between_files" validate:"gte=0"`
	InterTaskDelay    time.Duration `mapstructure:"inter_task_delay" validate:"gte=0"`
	TaskTimeout       time.Duration `mapstructure:"task_timeout" validate:"gte=0"`
}

// MetadataConfig controls frontmatter generation.
type MetadataConfig struct {
	DateFormat       string          `mapstructure:"date_format" validate:"required"`
	IncludeTimestamp bool            `mapstructure:"include_timestamp"`
	SkipExisting     bool            `mapstructure:"skip_existing"`
	Fields           []MetadataField `mapstructure:"fields" validate:"dive"`
}

// MetadataField describes one frontmatter key.
type MetadataField struct {
	Key         string `mapstructure:"key" validate:"required"`
	Type        string `mapstructure:"type" validate:"required,oneof=ai system date"`
	Description string `mapstructure:"description"`
	Required    bool   `mapstructure:"required"`
	// SystemField names the file attribute a system field is filled from:
	// created, modified or path.
	SystemField string `mapstructure:"system_field" validate:"omitempty,oneof=created modified path"`
}

// RewriteConfig controls AI rewrites.
type RewriteConfig struct {
	CreateBackup bool   `mapstructure:"create_backup"`
	Suffix       string `mapstructure:"suffix" validate:"required"`
}

// ServerConfig contains the local HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// DatabaseConfig enables the Postgres task history when URL is set.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// DefaultMetadataFields returns the fields used when none are configured.
func DefaultMetadataFields() []MetadataField {
	return []MetadataField{
		{Key: "title", Type: "ai", Description: "A concise title for the note", Required: true},
		{Key: "summary", Type: "ai", Description: "A one-sentence summary of the note", Required: true},
		{Key: "tags", Type: "ai", Description: "3-5 topical tags without the # prefix", Required: true},
		{Key: "created", Type: "system", SystemField: "created", Required: true},
		{Key: "modified", Type: "system", SystemField: "modified"},
	}
}

// DomainFields converts the configured fields for the note and generation packages.
func (m MetadataConfig) DomainFields() []domain.MetadataField {
	out := make([]domain.MetadataField, 0, len(m.Fields))
	for _, f := range m.Fields {
		out = append(out, domain.MetadataField{
			Key:         f.Key,
			Type:        domain.FieldType(f.Type),
			Description: f.Description,
			Required:    f.Required,
			SystemField: f.SystemField,
		})
	}
	return out
}
