/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Gridstate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the application settings with viper. Values come
// from an optional YAML file, GRIDSTATE_* environment variables and command
// line flags, in increasing priority.
//
//	schema: datasets.yaml
//	server:
//	  addr: ":8080"
//	store:
//	  type: sqlite
//	  dsn: "file:grid.db"
//	  debounce: 300ms
//	log:
//	  level: debug
//	  pretty: true
//
// GRIDSTATE_STORE_TYPE=redis overrides store.type.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/google/gridstate/core/persistence"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRIDSTATE"

// Config stores all configuration of the application.
type Config struct {
	// Schema is the path of the dataset schema file.
	Schema string       `mapstructure:"schema"`
	Title  string       `mapstructure:"title"`
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig stores HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// StoreConfig stores the persistence backend and its save policy.
type StoreConfig struct {
	Type          string        `mapstructure:"type"`
	DSN           string        `mapstructure:"dsn"`
	RedisAddr     string        `mapstructure:"redisAddr"`
	RedisPassword string        `mapstructure:"redisPassword"`
	RedisDB       int           `mapstructure:"redisDB"`
	Prefix        string        `mapstructure:"prefix"`
	Debounce      time.Duration `mapstructure:"debounce"`
	MaxWait       time.Duration `mapstructure:"maxWait"`
}

// LogConfig stores logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// New returns a viper instance with the defaults and environment overrides
// of every key.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("schema", "datasets.yaml")
	v.SetDefault("title", "Datasets")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.dsn", "file:gridstate.db")
	v.SetDefault("store.redisAddr", "localhost:6379")
	v.SetDefault("store.redisPassword", "")
	v.SetDefault("store.redisDB", 0)
	v.SetDefault("store.prefix", persistence.DefaultPrefix)
	v.SetDefault("store.debounce", persistence.DefaultDebounce)
	v.SetDefault("store.maxWait", persistence.DefaultMaxWait)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path, when set, into v and decodes the
// result. A missing file at an explicit path is an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store.Type) {
	case "", "memory", "sqlite", "sql", "redis":
	default:
		errs = append(errs, fmt.Errorf("store.type: %w: %q", persistence.ErrUnknownStore, c.Store.Type))
	}
	if c.Store.Debounce < 0 {
		errs = append(errs, errors.New("store.debounce must not be negative"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Persistence returns the store selection for persistence.Open.
func (s StoreConfig) Persistence() persistence.StoreConfig {
	return persistence.StoreConfig{
		Type:          s.Type,
		DSN:           s.DSN,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
	}
}

// AdapterOptions returns the save policy of the persistence adapter.
func (s StoreConfig) AdapterOptions(log zerolog.Logger, metrics *persistence.Metrics) persistence.Options {
	return persistence.Options{
		Prefix:   s.Prefix,
		Debounce: s.Debounce,
		MaxWait:  s.MaxWait,
		Logger:   log,
		Metrics:  metrics,
	}
}

// NewLogger creates the application logger writing to w: JSON lines, or a
// console format when Pretty is set.
func (l LogConfig) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if l.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
