/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads and validates this daemon's startup configuration:
// the control socket path and its owning user/group, the privilege-drop
// target, and the log level, sourced from flags, environment and an
// optional config file through github.com/spf13/viper and bound to cobra
// flags by github.com/spf13/cobra, then checked with
// github.com/go-playground/validator/v10.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/nabbar/networkd/logger"
)

const (
	// DefaultSocketPath matches the original daemon's SOCKET_PATH.
	DefaultSocketPath = "/var/run/networkd.sock"
	DefaultUser       = "daemon"
	DefaultGroup      = "network"
	DefaultLogLevel   = "info"
	DefaultNetstart   = "/etc/netstart"
	DefaultIfconfig   = "/sbin/ifconfig"
	DefaultLogEvent   = "/usr/libexec/loghwevent"
)

// Config is the validated set of parameters the supervisor needs before it
// forks its helpers and binds the listening socket.
type Config struct {
	// SocketPath is the Unix control socket the supervisor listens on.
	SocketPath string `mapstructure:"socket-path" validate:"required,filepath"`

	// SocketMode is the octal permission bits applied to SocketPath after bind.
	SocketMode string `mapstructure:"socket-mode" validate:"required"`

	// User is the unprivileged account the supervisor drops to after bind.
	User string `mapstructure:"user" validate:"required"`

	// Group is the unprivileged group the supervisor drops to after bind.
	Group string `mapstructure:"group" validate:"required"`

	// LogLevel is one of the tokens logger.GetLevelString accepts.
	LogLevel string `mapstructure:"log-level" validate:"required"`

	// IfconfigPath is the allow-listed path to the ifconfig(8) binary the
	// exec helper is permitted to run.
	IfconfigPath string `mapstructure:"ifconfig-path" validate:"required,filepath"`

	// NetstartPath is the allow-listed path to the netstart script the exec
	// helper invokes for NETSTART requests.
	NetstartPath string `mapstructure:"netstart-path" validate:"required,filepath"`

	// LogEventPath is the allow-listed path to the loghwevent helper the
	// exec helper invokes for LOGEVENT requests.
	LogEventPath string `mapstructure:"logevent-path" validate:"required,filepath"`

	// WriteDir is the directory the write helper creates hostname.<iface>
	// files under. Defaults to /etc, matching the original daemon.
	WriteDir string `mapstructure:"write-dir" validate:"required,dirpath"`
}

// Default returns the configuration this daemon starts with when no flag,
// environment variable or config file overrides a field.
func Default() Config {
	return Config{
		SocketPath:   DefaultSocketPath,
		SocketMode:   "0660",
		User:         DefaultUser,
		Group:        DefaultGroup,
		LogLevel:     DefaultLogLevel,
		IfconfigPath: DefaultIfconfig,
		NetstartPath: DefaultNetstart,
		LogEventPath: DefaultLogEvent,
		WriteDir:     "/etc",
	}
}

// Load seeds v with Default's values as viper defaults, layers in the config
// file at path (if non-empty) and environment variables prefixed
// NETWORKD_, then decodes and validates the result.
//
// v is expected to already have had cobra flags bound to it by the caller
// (cmd/networkd); Load does not know about cobra.
func Load(v *viper.Viper, path string) (Config, error) {
	def := Default()
	v.SetDefault("socket-path", def.SocketPath)
	v.SetDefault("socket-mode", def.SocketMode)
	v.SetDefault("user", def.User)
	v.SetDefault("group", def.Group)
	v.SetDefault("log-level", def.LogLevel)
	v.SetDefault("ifconfig-path", def.IfconfigPath)
	v.SetDefault("netstart-path", def.NetstartPath)
	v.SetDefault("logevent-path", def.LogEventPath)
	v.SetDefault("write-dir", def.WriteDir)

	v.SetEnvPrefix("networkd")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LogLevelOrDefault resolves cfg.LogLevel through logger.GetLevelString,
// centralizing the one place this package reaches into logger so callers
// never hand-roll the token lookup.
func LogLevelOrDefault(cfg Config) logger.Level {
	return logger.GetLevelString(cfg.LogLevel)
}
