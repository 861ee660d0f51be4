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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/google/gridstate/core/query"
	"github.com/google/gridstate/datasources"
)

func newStateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or clear saved table state",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <dataset>",
			Short: "Print the saved state of a dataset as query parameters",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runStateShow(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "clear <dataset>",
			Short: "Delete the saved state of a dataset",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runStateClear(cmd, args[0])
			},
		},
	)
	return cmd
}

// persistenceKey returns the store key of a declared dataset.
func (a *app) persistenceKey(name string) (string, error) {
	m, err := a.manager()
	if err != nil {
		return "", err
	}
	ds, ok := m.Dataset(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", datasources.ErrUnknownDataset, name)
	}
	return ds.PersistenceKey(), nil
}

func (a *app) runStateShow(cmd *cobra.Command, name string) error {
	key, err := a.persistenceKey(name)
	if err != nil {
		return err
	}
	adapter, closer, err := a.openPersistence(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	snap := adapter.Load(cmd.Context(), key)
	out := cmd.OutOrStdout()
	if len(snap.Slices) == 0 {
		fmt.Fprintf(out, "no saved state for %s\n", name)
		return nil
	}
	printParams(out, query.Encode(snap.State))
	return nil
}

func (a *app) runStateClear(cmd *cobra.Command, name string) error {
	key, err := a.persistenceKey(name)
	if err != nil {
		return err
	}
	adapter, closer, err := a.openPersistence(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := adapter.Clear(cmd.Context(), key); err != nil {
		return fmt.Errorf("failed to clear state of %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared saved state of %s\n", name)
	return nil
}
