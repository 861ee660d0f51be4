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

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/server"
)

func newServeCmd(a *app) *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the datasets over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), persist)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().BoolVar(&persist, "persist", false, "remember the last state of every dataset")
	_ = a.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) runServe(ctx context.Context, persist bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := a.manager()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := server.Options{
		Manager:  m,
		Gatherer: reg,
		Title:    a.cfg.Title,
		Logger:   a.log,
	}
	if persist {
		adapter, closer, err := a.openPersistence(ctx, persistence.NewMetrics(reg))
		if err != nil {
			return err
		}
		defer func() {
			if err := closer.Close(); err != nil {
				a.log.Warn().Err(err).Msg("failed to close state store")
			}
		}()
		opts.Persistence = adapter
	}
	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().Str("addr", httpServer.Addr).Strs("datasets", m.Names()).Msg("serving")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.log.Info().Msg("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
