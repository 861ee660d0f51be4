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

// Package rendering turns a table page into a string view model and renders
// it as HTML or as an ASCII table.
package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	tablePage   = "table.html"
	landingPage = "landing.html"
)

// TableRenderer renders view models with the embedded HTML templates.
// Pages are rendered in full before anything is written, so a failing
// template leaves the writer untouched.
type TableRenderer struct {
	pages *template.Template
}

// NewTableRenderer parses the embedded templates.
func NewTableRenderer() (*TableRenderer, error) {
	pages, err := template.New("").ParseFS(template.TrustedFSFromEmbed(templateFS), "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	for _, name := range []string{tablePage, landingPage} {
		if pages.Lookup(name) == nil {
			return nil, fmt.Errorf("missing template %q", name)
		}
	}
	return &TableRenderer{pages: pages}, nil
}

// Render writes the table page.
func (r *TableRenderer) Render(w io.Writer, vm TableViewModel) error {
	return r.execute(w, tablePage, vm)
}

// RenderLanding writes the dataset index page.
func (r *TableRenderer) RenderLanding(w io.Writer, vm LandingViewModel) error {
	return r.execute(w, landingPage, vm)
}

func (r *TableRenderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.pages.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
