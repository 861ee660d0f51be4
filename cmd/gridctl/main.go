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

// Command gridctl views and serves tabular datasets. Table state (sorting,
// filters, grouping, pagination, layout) is given as URL query parameters
// and can be persisted between runs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/google/gridstate/core/config"
	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/datasources"
	"github.com/google/gridstate/demo"
)

// app holds what every command shares once the root command has run its
// pre-run hook.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log zerolog.Logger

	configFile string
	useDemo    bool
	demoRows   int
	system     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "gridctl",
		Short: "View and serve tabular datasets",
		Long: `gridctl filters, sorts, groups and pages tabular datasets declared in a
schema file, and serves them over HTTP.

Table state is written as URL query parameters, for example:

  gridctl view orders sort=amount:desc filter:status=Active grouped=region page=2`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.Log.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (YAML)")
	flags.String("schema", "", "dataset schema file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("pretty", false, "human readable logs")
	flags.String("store", "", "state store: memory, sqlite or redis")
	flags.String("dsn", "", "SQLite data source name")
	flags.String("redis-addr", "", "Redis address")
	flags.BoolVar(&a.useDemo, "demo", false, "use the built-in demo datasets instead of a schema file")
	flags.IntVar(&a.demoRows, "demo-rows", 0, "rows of the generated demo transactions table")
	flags.BoolVar(&a.system, "system-tables", false, "also expose the _columns dataset describing every column")
	for key, flag := range map[string]string{
		"schema":          "schema",
		"log.level":       "log-level",
		"log.pretty":      "pretty",
		"store.type":      "store",
		"store.dsn":       "dsn",
		"store.redisAddr": "redis-addr",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newListCmd(a),
		newViewCmd(a),
		newServeCmd(a),
		newStateCmd(a),
	)
	return root
}

// manager registers the datasets of the schema file, or the demo datasets.
func (a *app) manager() (*datasources.Manager, error) {
	m := datasources.NewManager(a.log)
	if a.useDemo {
		if err := demo.Register(m, a.demoRows); err != nil {
			return nil, fmt.Errorf("failed to register demo datasets: %w", err)
		}
	} else if err := m.LoadConfig(a.cfg.Schema); err != nil {
		return nil, err
	}
	if a.system {
		m.AddSystemTables()
	}
	return m, nil
}

// openPersistence opens the configured store and an adapter over it. The
// returned closer flushes the adapter before closing the store.
func (a *app) openPersistence(ctx context.Context, metrics *persistence.Metrics) (*persistence.Adapter, io.Closer, error) {
	store, err := persistence.Open(ctx, a.cfg.Store.Persistence())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state store: %w", err)
	}
	adapter := persistence.New(store, a.cfg.Store.AdapterOptions(a.log, metrics))
	return adapter, closerFunc(func() error {
		err := adapter.Close()
		if cerr := store.Close(); err == nil {
			err = cerr
		}
		return err
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
