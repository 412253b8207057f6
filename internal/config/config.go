// Package config loads tsbridge's tsserver/editor settings from defaults,
// an optional tsbridge.yaml, and environment variables, with live reload
// when the file changes on disk.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the settings tsbridge needs to spawn and configure the
// tsserver child process. Field names mirror server.Options directly so
// a loaded Config can be copied straight into it.
type Config struct {
	TsserverPath         string   `mapstructure:"tsserverPath"`
	NodePath             string   `mapstructure:"nodePath"`
	TsserverLogFile      string   `mapstructure:"tsserverLogFile"`
	TsserverLogVerbosity string   `mapstructure:"tsserverLogVerbosity"`
	GlobalPlugins        []string `mapstructure:"globalPlugins"`
	PluginProbeLocations []string `mapstructure:"pluginProbeLocations"`
	CancellationPipeBase string   `mapstructure:"cancellationPipeBase"`
	ExtraArgs            string   `mapstructure:"extraArgs"`
}

// Loader wraps a viper instance so Load and Watch share one source of
// truth (defaults, file, environment) and WatchConfig's reload callback
// can re-unmarshal into a fresh Config.
type Loader struct {
	v *viper.Viper
}

// NewLoader builds a Loader that layers built-in defaults, then
// tsbridge.yaml from the current directory, then environment variables,
// in that order of increasing precedence. CLI flags take
// precedence over all of it; callers apply flag overrides to the
// returned Config themselves after Load.
func NewLoader() *Loader {
	v := viper.New()

	v.SetDefault("tsserverPath", "tsserver")
	v.SetDefault("nodePath", "node")
	v.SetDefault("tsserverLogFile", "")
	v.SetDefault("tsserverLogVerbosity", "")
	v.SetDefault("globalPlugins", []string{})
	v.SetDefault("pluginProbeLocations", []string{})
	v.SetDefault("cancellationPipeBase", "")
	v.SetDefault("extraArgs", "")

	v.SetConfigName("tsbridge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("tsserverLogFile", "TSSERVER_LOG_FILE")
	_ = v.BindEnv("tsserverPath", "TSSERVER_PATH")
	_ = v.BindEnv("tsserverLogVerbosity", "TSSERVER_LOG_VERBOSITY")
	_ = v.BindEnv("globalPlugins", "TSSERVER_GLOBAL_PLUGINS")
	_ = v.BindEnv("pluginProbeLocations", "TSSERVER_PLUGIN_PROBE_LOCATIONS")
	_ = v.BindEnv("extraArgs", "TSSERVER_EXTRA_ARGS")

	return &Loader{v: v}
}

// Load reads tsbridge.yaml if present and returns the merged Config. A
// missing config file is not an error — defaults and environment
// variables still apply.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("tsbridge: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("tsbridge: unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Watch arranges for onChange to be called with a freshly reloaded
// Config whenever tsbridge.yaml changes on disk. It only reports the
// new Config; it does not tear down an already-running transport or
// change the options of an existing server.
func (l *Loader) Watch(onChange func(*Config, error)) {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := l.v.Unmarshal(&cfg); err != nil {
			onChange(nil, fmt.Errorf("tsbridge: reloading config: %w", err))
			return
		}
		onChange(&cfg, nil)
	})
	l.v.WatchConfig()
}

// Load is a convenience wrapper around NewLoader().Load() for callers
// that don't need live reload.
func Load() (*Config, error) {
	return NewLoader().Load()
}
