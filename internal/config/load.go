package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. SMARTEXTRACT_LLM_API_KEY for llm.api_key.
const EnvPrefix = "SMARTEXTRACT"

var validate = validator.New()

// Load configuration from defaults and environment variables only.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path (YAML) when non-empty, then applies
// environment overrides. Environment variables take precedence over values from
// the config file.
func LoadFile(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// NewViper returns a viper instance with defaults and environment binding configured.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers every key with its default value. Registering all keys
// lets AutomaticEnv override any of them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.prompt_template_path", "")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 2*time.Second)
	v.SetDefault("llm.requests_per_minute", 0)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("vault.root", ".")
	v.SetDefault("vault.target_folder", "Extractcards")

	v.SetDefault("notes.add_backlinks", true)
	v.SetDefault("notes.backlink_style", "wiki")
	v.SetDefault("notes.quote_callout", "cite")
	v.SetDefault("notes.quote_collapsible", true)
	v.SetDefault("notes.open_in_new_tab", true)
	v.SetDefault("notes.skip_existing_tags", false)

	v.SetDefault("batch.max_concurrent", 2)
	v.SetDefault("batch.delay_between_files", time.Second)
	v.SetDefault("batch.inter_task_delay", time.Duration(0))
	v.SetDefault("batch.task_timeout", 2*time.Minute)

	v.SetDefault("metadata.date_format", "YYYY-MM-DD")
	v.SetDefault("metadata.include_timestamp", false)
	v.SetDefault("metadata.skip_existing", true)

	v.SetDefault("rewrite.create_backup", false)
	v.SetDefault("rewrite.suffix", "-rewrite")

	v.SetDefault("server.addr", "127.0.0.1:8765")
	v.SetDefault("database.url", "")
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if len(cfg.Metadata.Fields) == 0 {
		cfg.Metadata.Fields = DefaultMetadataFields()
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Metadata.Fields))
	for _, f := range cfg.Metadata.Fields {
		if seen[f.Key] {
			return fmt.Errorf("configuration validation failed: duplicate metadata field %q", f.Key)
		}
		seen[f.Key] = true
	}

	return nil
}

// RequireLLM reports whether the AI provider settings are usable. Commands that
// never call a provider, such as serving task history, skip this check.
func (c *Config) RequireLLM() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required (set SMARTEXTRACT_LLM_API_KEY)"))
	}
	return errors.Join(errs...)
}

// BatchSettingsChanged reports whether the live-tunable batch settings differ.
func (c *Config) BatchSettingsChanged(other *Config) bool {
	return c.Batch.MaxConcurrent != other.Batch.MaxConcurrent ||
		c.Batch.InterTaskDelay != other.Batch.InterTaskDelay ||
		c.Batch.DelayBetweenFiles != other.Batch.DelayBetweenFiles
}
