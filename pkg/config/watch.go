package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/harborml/longshore/internal/logger"
)

// Watch observes the configuration file and invokes onChange with a freshly
// loaded configuration every time the file is rewritten. Reloads that fail
// to parse or validate are logged and dropped, so the last good
// configuration stays in effect.
//
// Only settings read per request can take effect without a restart; the
// server applies the logging settings and ignores the rest.
func Watch(configPath string, onChange func(*Config)) error {
	if configPath == "" {
		return fmt.Errorf("config watch requires a config file path")
	}

	v := viper.New()
	setupViper(v, configPath)
	if _, err := readConfigFile(v); err != nil {
		return err
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		logger.Debug("Config file changed", "op", event.Op.String(), "path", event.Name)

		var cfg Config
		if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
			logger.Warn("Ignoring config reload: unmarshal failed", logger.KeyError, err.Error())
			return
		}
		ApplyDefaults(&cfg)
		if err := Validate(&cfg); err != nil {
			logger.Warn("Ignoring config reload: validation failed", logger.KeyError, err.Error())
			return
		}

		onChange(&cfg)
	})
	v.WatchConfig()

	return nil
}
