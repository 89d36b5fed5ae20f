// Package config loads server settings from defaults, an optional file,
// and environment variables, grounded on the viper-based configuration
// manager found across the example corpus (defaults, env prefix, and an
// fsnotify-driven watch for live reload).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings holds every tunable this server reads at startup and can react
// to on reload: listen address, worker pool sizing, logging, and the
// metrics collector's sampling interval and alert thresholds.
type Settings struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	WorkerPoolSize  int           `mapstructure:"worker_pool_size"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StaticDir       string        `mapstructure:"static_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	MetricsRingSize   int           `mapstructure:"metrics_ring_size"`
	AlertCPUPercent   float64       `mapstructure:"alert_cpu_percent"`
	AlertMemPercent   float64       `mapstructure:"alert_mem_percent"`
	AlertDiskPercent  float64       `mapstructure:"alert_disk_percent"`
}

func defaults() map[string]any {
	return map[string]any{
		"listen_addr":       ":8080",
		"worker_pool_size":  16,
		"read_buffer_size":  8192,
		"shutdown_timeout":  "5s",
		"static_dir":        "./static",
		"log_level":         "info",
		"log_format":        "json",
		"log_file":          "",
		"metrics_interval":  "2s",
		"metrics_ring_size": 300,
		"alert_cpu_percent": 90.0,
		"alert_mem_percent": 90.0,
		"alert_disk_percent": 90.0,
	}
}

// Loader owns a viper instance and the last Settings it produced, so a
// file-change callback can re-unmarshal and hand the caller fresh values.
type Loader struct {
	v          *viper.Viper
	hasFile    bool

	mu       sync.RWMutex
	current  *Settings
	onChange func(*Settings)
}

// New builds a Loader. configFile may be empty, in which case defaults and
// environment variables are the only sources.
func New(configFile string) *Loader {
	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("MONITORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	hasFile := configFile != ""
	if hasFile {
		v.SetConfigFile(configFile)
	}

	return &Loader{v: v, hasFile: hasFile}
}

// Load reads the config file (if one was set) plus environment overrides
// and unmarshals everything into a Settings. A missing file is not an
// error: defaults and env vars still apply.
func (l *Loader) Load() (*Settings, error) {
	if l.hasFile {
		if err := l.v.ReadInConfig(); err != nil {
			// An explicit SetConfigFile path reports a missing file as a
			// not-exist error, not as viper.ConfigFileNotFoundError.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", l.v.ConfigFileUsed(), err)
			}
		}
	}

	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	l.mu.Lock()
	l.current = &s
	l.mu.Unlock()

	return &s, nil
}

// Current returns the most recently loaded Settings, or nil if Load has
// not run yet.
func (l *Loader) Current() *Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Watch starts watching the config file for changes, re-unmarshaling and
// invoking onChange with the fresh Settings on every write. It is a no-op
// if no config file was set.
func (l *Loader) Watch(onChange func(*Settings)) {
	if !l.hasFile {
		return
	}

	l.mu.Lock()
	l.onChange = onChange
	l.mu.Unlock()

	l.v.OnConfigChange(func(e fsnotify.Event) {
		var s Settings
		if err := l.v.Unmarshal(&s); err != nil {
			return
		}
		l.mu.Lock()
		l.current = &s
		cb := l.onChange
		l.mu.Unlock()
		if cb != nil {
			cb(&s)
		}
	})
	l.v.WatchConfig()
}
