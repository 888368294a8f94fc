package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads the config file held by v whenever it changes on disk and passes
// every valid result to onChange. Invalid edits are logged and ignored, so the
// running process keeps its last good configuration.
func Watch(v *viper.Viper, logger *slog.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := FromViper(v)
		if err != nil {
			logger.Warn("ignoring invalid configuration change",
				"file", e.Name,
				"error", err)
			return
		}

		logger.Info("configuration reloaded", "file", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
}
