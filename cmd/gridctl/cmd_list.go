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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/google/gridstate/core/rendering"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the declared datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			vm := rendering.TableViewModel{
				Title: "Datasets",
				Columns: []rendering.ColumnInfo{
					{ID: "name", Header: "Name"},
					{ID: "title", Header: "Title"},
					{ID: "rows", Header: "Rows"},
					{ID: "description", Header: "Description"},
				},
			}
			for _, info := range m.List() {
				rows := ""
				if info.Loaded {
					rows = strconv.Itoa(info.Rows)
				}
				vm.Rows = append(vm.Rows, rendering.RowView{
					ID:    info.Name,
					Cells: []string{info.Name, info.Title, rows, info.Description},
				})
			}
			vm.RowCount = len(vm.Rows)
			vm.FilteredCount = len(vm.Rows)
			vm.PageSize = max(len(vm.Rows), 1)
			vm.PageNumber, vm.PageCount = 1, 1
			return rendering.RenderASCII(cmd.OutOrStdout(), vm, rendering.ASCIIOptions{NoCaption: true})
		},
	}
}
