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
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/google/gridstate/core/query"
	"github.com/google/gridstate/core/rendering"
	"github.com/google/gridstate/datasources"
)

type viewOptions struct {
	persist   bool
	maxWidth  int
	noCaption bool
	link      bool
}

func newViewCmd(a *app) *cobra.Command {
	var opts viewOptions
	cmd := &cobra.Command{
		Use:   "view <dataset> [param=value...]",
		Short: "Print one page of a dataset as a text table",
		Long: `Print one page of a dataset as a text table.

Parameters use the URL query format:
  sort=amount:desc,name     filter:status=Active     filter:amount=10..20
  q=acme                    grouped=region           expanded=region:Text(EU)
  hidden=notes              pinLeft=id               page=2  limit=20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args[0], args[1:], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "restore the saved state and save the result")
	cmd.Flags().IntVar(&opts.maxWidth, "width", rendering.DefaultMaxCellWidth, "maximum cell width")
	cmd.Flags().BoolVar(&opts.noCaption, "no-caption", false, "omit the title line")
	cmd.Flags().BoolVar(&opts.link, "link", false, "print the query string of the resulting state")
	return cmd
}

// parseParams joins param=value arguments into query values.
func parseParams(params []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", p)
		}
		q.Add(key, value)
	}
	return q, nil
}

func (a *app) runView(cmd *cobra.Command, name string, params []string, opts viewOptions) error {
	ctx := cmd.Context()
	values, err := parseParams(params)
	if err != nil {
		return err
	}
	m, err := a.manager()
	if err != nil {
		return err
	}
	ds, ok := m.Dataset(name)
	if !ok {
		return fmt.Errorf("%w: %q", datasources.ErrUnknownDataset, name)
	}

	openOpts := datasources.OpenOptions{
		Logger: a.log,
		OnDiagnostic: func(err error) {
			a.log.Warn().Err(err).Str("dataset", name).Msg("callback failed")
		},
	}
	if opts.persist {
		adapter, closer, err := a.openPersistence(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := closer.Close(); err != nil {
				a.log.Warn().Err(err).Msg("failed to close state store")
			}
		}()
		openOpts.Persistence = adapter
	}

	tbl, err := m.Open(ctx, name, openOpts)
	if err != nil {
		return err
	}
	q := query.NewQuery(&url.URL{Path: name, RawQuery: values.Encode()}, query.Variants(tbl.Columns()))
	if !q.State.IsZero() {
		tbl.Apply(q.State)
	}

	vm := rendering.BuildViewModel(name, ds.Title, tbl, tbl.Model(), nil)
	out := cmd.OutOrStdout()
	if err := rendering.RenderASCII(out, vm, rendering.ASCIIOptions{MaxCellWidth: opts.maxWidth, NoCaption: opts.noCaption}); err != nil {
		return err
	}
	if opts.link {
		printParams(out, query.Encode(tbl.State()))
	}
	if opts.persist {
		return tbl.Flush(ctx)
	}
	return nil
}

// printParams writes one unescaped name=value line per parameter, sorted by
// name.
func printParams(w io.Writer, q url.Values) {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range q[k] {
			fmt.Fprintf(w, "%s=%s\n", k, v)
		}
	}
}
