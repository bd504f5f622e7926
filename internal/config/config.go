/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config resolves settings from defaults, an optional sheetcoder.yaml,
// SHEETCODER_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cloudwego/sheetcoder/lang/log"
	"github.com/cloudwego/sheetcoder/lang/optimizer"
	"github.com/cloudwego/sheetcoder/lang/transpiler"
)

const (
	FileName  = "sheetcoder"
	EnvPrefix = "SHEETCODER"
)

type Config struct {
	LogLevel    string          `mapstructure:"log_level"`
	Optimizer   OptimizerConfig `mapstructure:"optimizer"`
	Transpile   TranspileConfig `mapstructure:"transpile"`
	Server      ServerConfig    `mapstructure:"server"`
	AnalysisDir string          `mapstructure:"analysis_dir"`
}

type OptimizerConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

type TranspileConfig struct {
	Comments     bool   `mapstructure:"comments"`
	FunctionName string `mapstructure:"function_name"`
	// Validate parses the emitted code and reports syntax errors.
	Validate bool `mapstructure:"validate"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var DefaultConfig = Config{
	LogLevel:    "info",
	Optimizer:   OptimizerConfig{MaxIterations: optimizer.DefaultMaxIterations},
	Transpile:   TranspileConfig{FunctionName: "function"},
	Server:      ServerConfig{Addr: "127.0.0.1:8420"},
	AnalysisDir: ".",
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"max-iterations": "optimizer.max_iterations",
	"comments":       "transpile.comments",
	"function-name":  "transpile.function_name",
	"validate":       "transpile.validate",
	"addr":           "server.addr",
	"analysis-dir":   "analysis_dir",
}

// Load resolves the configuration. cfgFile, when set, must exist; otherwise
// sheetcoder.yaml (or .json) is looked up in dir and is optional. Flags that
// are not defined in flags are ignored.
func Load(flags *pflag.FlagSet, cfgFile, dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, pkgerrors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, pkgerrors.Wrap(err, "read config")
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, pkgerrors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "decode config")
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return nil, pkgerrors.Wrap(err, "log_level")
	}
	if cfg.Optimizer.MaxIterations <= 0 {
		return nil, pkgerrors.Errorf("optimizer.max_iterations must be positive, got %d", cfg.Optimizer.MaxIterations)
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("loaded config from %s", used)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("optimizer.max_iterations", DefaultConfig.Optimizer.MaxIterations)
	v.SetDefault("transpile.comments", DefaultConfig.Transpile.Comments)
	v.SetDefault("transpile.function_name", DefaultConfig.Transpile.FunctionName)
	v.SetDefault("transpile.validate", DefaultConfig.Transpile.Validate)
	v.SetDefault("server.addr", DefaultConfig.Server.Addr)
	v.SetDefault("analysis_dir", DefaultConfig.AnalysisDir)
}

// TranspileOptions converts the settings into transpiler options.
func (c *Config) TranspileOptions() transpiler.Options {
	return transpiler.Options{
		Comments:  c.Transpile.Comments,
		Optimizer: optimizer.Options{MaxIterations: c.Optimizer.MaxIterations},
	}
}

// ApplyLogLevel sets the package logger level.
func (c *Config) ApplyLogLevel() error {
	lv, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return pkgerrors.Wrap(err, "log_level")
	}
	log.SetLogLevel(lv)
	return nil
}

// RegisterFlags defines the persistent flags Load binds.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("log-level", DefaultConfig.LogLevel, "log level: debug, info or error")
	flags.Int("max-iterations", DefaultConfig.Optimizer.MaxIterations, "optimizer pass limit")
	flags.Bool("comments", DefaultConfig.Transpile.Comments, "emit a comment above each block")
	flags.String("function-name", DefaultConfig.Transpile.FunctionName, "name of the generated function")
	flags.Bool("validate", DefaultConfig.Transpile.Validate, "check the generated code for syntax errors")
	flags.String("addr", DefaultConfig.Server.Addr, "listen address of the HTTP API")
	flags.String("analysis-dir", DefaultConfig.AnalysisDir, "directory holding saved analyses")
}
