package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/config"
	"github.com/phrazzld/smart-extract/internal/task"
)

// loadConfig reads defaults, the optional config file and the environment, then
// lets explicitly set command-line flags override them. The viper instance is
// returned so serve can watch the config file.
func loadConfig(inv *invocation) (*config.Config, *viper.Viper, error) {
	v := config.NewViper()
	if inv.configPath != "" {
		v.SetConfigFile(inv.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config file %s: %w", inv.configPath, err)
		}
	}

	if err := v.BindPFlag("log.level", inv.global.Lookup("log-level")); err != nil {
		return nil, nil, fmt.Errorf("failed to bind flag: %w", err)
	}
	if f := inv.commandFlags.Lookup("addr"); f != nil {
		if err := v.BindPFlag("server.addr", f); err != nil {
			return nil, nil, fmt.Errorf("failed to bind flag: %w", err)
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// queueConfig maps the batch section onto the task queue.
func queueConfig(cfg config.BatchConfig) task.Config {
	return task.Config{
		MaxConcurrent:  cfg.MaxConcurrent,
		InterTaskDelay: cfg.InterTaskDelay,
		TaskTimeout:    cfg.TaskTimeout,
	}
}

// batchSettings maps the batch section onto the batch driver.
func batchSettings(cfg config.BatchConfig) batch.Settings {
	return batch.Settings{
		MaxConcurrent:     cfg.MaxConcurrent,
		InterTaskDelay:    cfg.InterTaskDelay,
		DelayBetweenFiles: cfg.DelayBetweenFiles,
	}
}
