// Package config loads river's startup configuration with viper, the
// same library the rest of the retrieved Wayland-adjacent corpus uses
// for layered config (flags > env > file > defaults).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config is the subset of startup knobs the core itself needs; layout
// policy and bindings are the wm client's concern (spec §2 "external
// collaborators"), not the compositor's.
type Config struct {
	// LogLevel is one of debug/info/warn/error, forwarded to rlog.SetLevel.
	LogLevel string `mapstructure:"log_level"`

	// WMSocket is the unix socket path the wm protocol listens on.
	WMSocket string `mapstructure:"wm_socket"`

	// TransactionTimeoutMillis bounds how long the transaction
	// coordinator waits for every window to ack before forcing a commit
	// (spec §4.2 "bounded-wait timeout").
	TransactionTimeoutMillis int `mapstructure:"transaction_timeout_ms"`

	// BorderWidth is the border thickness in logical pixels, applied to
	// every window's scene border rects (spec §3 "four border
	// rectangles").
	BorderWidth int `mapstructure:"border_width"`
}

// Default returns the built-in defaults, used as the viper baseline
// before flags/env/file override them.
func Default() Config {
	return Config{
		LogLevel:                 "info",
		WMSocket:                 "/run/river/wm.sock",
		TransactionTimeoutMillis: 200,
		BorderWidth:              2,
	}
}

// Load builds a viper instance layering, in increasing priority:
// defaults, an optional config file at path (ignored if empty or
// missing), RIVER_-prefixed environment variables, then whatever flags
// the caller has already bound into v with BindPFlag.
func Load(path string, v *viper.Viper) (Config, error) {
	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("wm_socket", def.WMSocket)
	v.SetDefault("transaction_timeout_ms", def.TransactionTimeoutMillis)
	v.SetDefault("border_width", def.BorderWidth)

	v.SetEnvPrefix("river")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
