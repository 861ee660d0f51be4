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

package rendering

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"
)

// DefaultMaxCellWidth bounds the width of one ASCII cell.
const DefaultMaxCellWidth = 40

// ASCIIOptions configures RenderASCII.
type ASCIIOptions struct {
	// MaxCellWidth truncates longer cells. Defaults to DefaultMaxCellWidth.
	MaxCellWidth int
	// NoCaption omits the title line.
	NoCaption bool
}

// RenderASCII writes vm as a bordered text table. Group rows are indented
// by depth and carry their aggregates in the column cells; selectable rows
// get a [x] marker; the footer shows the page position.
func RenderASCII(w io.Writer, vm TableViewModel, opts ASCIIOptions) error {
	maxWidth := opts.MaxCellWidth
	if maxWidth <= 0 {
		maxWidth = DefaultMaxCellWidth
	}

	showSelect, showTree := false, false
	for _, r := range vm.Rows {
		showSelect = showSelect || r.CanSelect
		showTree = showTree || r.IsGroup || r.CanExpand
	}

	var header []string
	if showSelect {
		header = append(header, selectMarker(vm.AllSelected, vm.SomeSelected))
	}
	if showTree {
		header = append(header, "")
	}
	for _, c := range vm.Columns {
		header = append(header, c.Header+sortMarker(c))
	}

	body := make([][]string, 0, len(vm.Rows))
	for _, r := range vm.Rows {
		var line []string
		if showSelect {
			marker := ""
			if r.CanSelect {
				marker = selectMarker(r.Selected, false)
			}
			line = append(line, marker)
		}
		if showTree {
			line = append(line, treeCell(r))
		}
		line = append(line, r.Cells...)
		body = append(body, line)
	}

	var totals []string
	if vm.Totals != nil {
		if showSelect {
			totals = append(totals, "")
		}
		if showTree {
			totals = append(totals, "")
		}
		totals = append(totals, vm.Totals...)
		if len(totals) > 0 && totals[0] == "" {
			totals[0] = "total"
		}
	}

	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], min(displayWidth(c), maxWidth))
			}
		}
	}
	measure(header)
	for _, line := range body {
		measure(line)
	}
	measure(totals)

	var sb strings.Builder
	if !opts.NoCaption {
		sb.WriteString(vm.Caption())
		sb.WriteByte('\n')
	}
	if len(widths) > 0 {
		writeRule(&sb, widths)
		writeLine(&sb, widths, header, maxWidth)
		writeRule(&sb, widths)
		for _, line := range body {
			writeLine(&sb, widths, line, maxWidth)
		}
		writeRule(&sb, widths)
		if totals != nil {
			writeLine(&sb, widths, totals, maxWidth)
			writeRule(&sb, widths)
		}
	}
	sb.WriteString(footer(vm))
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

func selectMarker(on, partial bool) string {
	switch {
	case on:
		return "[x]"
	case partial:
		return "[-]"
	default:
		return "[ ]"
	}
}

func sortMarker(c ColumnInfo) string {
	switch c.Sort {
	case "asc":
		return " ^"
	case "desc":
		return " v"
	default:
		return ""
	}
}

func treeCell(r RowView) string {
	indent := strings.Repeat("  ", r.Depth)
	if r.IsGroup {
		marker := "+"
		if r.Expanded {
			marker = "-"
		}
		return fmt.Sprintf("%s%s %s (%d)", indent, marker, r.Label, r.Count)
	}
	if r.CanExpand {
		if r.Expanded {
			return indent + "-"
		}
		return indent + "+"
	}
	return indent
}

func footer(vm TableViewModel) string {
	if vm.Loading {
		return "loading..."
	}
	if vm.Error != "" {
		return "error: " + vm.Error
	}
	if vm.RowCount == 0 {
		return "no rows"
	}
	start := (vm.PageNumber-1)*vm.PageSize + 1
	end := start + len(vm.Rows) - 1
	return fmt.Sprintf("rows %d-%d of %d, page %d of %d, %d matching",
		start, end, vm.RowCount, vm.PageNumber, max(vm.PageCount, 1), vm.FilteredCount)
}

func writeRule(sb *strings.Builder, widths []int) {
	for _, w := range widths {
		sb.WriteByte('+')
		sb.WriteString(strings.Repeat("-", w+2))
	}
	sb.WriteString("+\n")
}

func writeLine(sb *strings.Builder, widths []int, cells []string, maxWidth int) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = truncate(cells[i], maxWidth)
		}
		sb.WriteString("| ")
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", w-displayWidth(cell)+1))
	}
	sb.WriteString("|\n")
}

// displayWidth counts terminal columns; East Asian wide runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func truncate(s string, maxWidth int) string {
	if displayWidth(s) <= maxWidth {
		return s
	}
	var sb strings.Builder
	n := 0
	for _, r := range s {
		w := displayWidth(string(r))
		if n+w > maxWidth-1 {
			break
		}
		sb.WriteRune(r)
		n += w
	}
	sb.WriteString("…")
	return sb.String()
}
