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

// Package server serves datasets over HTTP. The table state of a request is
// carried in its query string, so every page is a shareable link.
//
//	GET /                 landing page
//	GET /tables           dataset list (JSON)
//	GET /tables/{name}    one page of a dataset (JSON)
//	GET /view/{name}      one page of a dataset (HTML)
//	GET /metrics          Prometheus metrics, when a gatherer is set
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/safehtml"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/query"
	"github.com/google/gridstate/core/rendering"
	"github.com/google/gridstate/datasources"
)

// Options configures a Server.
type Options struct {
	Manager *datasources.Manager
	// Persistence, when set, restores the last state of a dataset for
	// requests that do not override it and saves the resulting state.
	Persistence *persistence.Adapter
	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer
	// Title of the landing page.
	Title  string
	Logger zerolog.Logger
}

// Server represents the application server with all its dependencies
type Server struct {
	manager  *datasources.Manager
	persist  *persistence.Adapter
	gatherer prometheus.Gatherer
	renderer *rendering.TableRenderer
	title    string
	log      zerolog.Logger
}

// New creates a server over the datasets of opts.Manager.
func New(opts Options) (*Server, error) {
	if opts.Manager == nil {
		return nil, errors.New("server: nil dataset manager")
	}
	renderer, err := rendering.NewTableRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	title := opts.Title
	if title == "" {
		title = "Datasets"
	}
	return &Server{
		manager:  opts.Manager,
		persist:  opts.Persistence,
		gatherer: opts.Gatherer,
		renderer: renderer,
		title:    title,
		log:      opts.Logger.With().Str("component", "server").Logger(),
	}, nil
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleLanding)
	r.Get("/tables", s.handleList)
	r.Get("/tables/{name}", s.handleTableJSON)
	r.Get("/view/{name}", s.handleTableHTML)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// logRequests logs every request with its route pattern and a request id.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// TableHandlerResult represents the result of handling a table request
type TableHandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

// TimingEntry is the duration of one step of a request.
type TimingEntry struct {
	Operation  string `json:"operation"`
	DurationMs string `json:"durationMs"`
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries []TimingEntry
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, TimingEntry{
		Operation:  operation,
		DurationMs: fmt.Sprintf("%.2f", float64(duration.Microseconds())/1000.0),
	})
}

// GetEntries returns all timing entries
func (tc *TimingCollector) GetEntries() []TimingEntry {
	return tc.entries
}

// TotalMs returns total elapsed time in milliseconds as formatted string
func (tc *TimingCollector) TotalMs() string {
	return fmt.Sprintf("%.2f", float64(time.Since(tc.start).Microseconds())/1000.0)
}

// TablePage is the outcome of a successful table request.
type TablePage struct {
	ViewModel rendering.TableViewModel
	// Self links to the page with its full state.
	Self        safehtml.URL
	Diagnostics []string
}

// HandleTableRequest derives the page of dataset name addressed by
// requestURL. The result is nil on success.
func (s *Server) HandleTableRequest(ctx context.Context, requestURL *url.URL, name string, timing *TimingCollector) (*TablePage, *TableHandlerResult) {
	ds, ok := s.manager.Dataset(name)
	if !ok {
		return nil, &TableHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Table '%s' not found", name)}
	}

	var (
		mu    sync.Mutex
		diags []string
	)
	openStart := time.Now()
	tbl, err := s.manager.Open(ctx, name, datasources.OpenOptions{
		Persistence: s.persist,
		Logger:      s.log,
		OnDiagnostic: func(err error) {
			mu.Lock()
			defer mu.Unlock()
			diags = append(diags, err.Error())
		},
	})
	if err != nil {
		return nil, s.openFailure(name, err)
	}
	timing.Record("Open Table", time.Since(openStart))

	// The query string overrides the declared and restored state; links
	// are built from the resulting state so they keep all of it.
	parseStart := time.Now()
	q := query.NewQuery(requestURL, query.Variants(tbl.Columns()))
	if !q.State.IsZero() {
		tbl.Apply(q.State)
	}
	timing.Record("Parse Query", time.Since(parseStart))

	deriveStart := time.Now()
	m := tbl.Model()
	timing.Record("Derive Model", time.Since(deriveStart))

	q.State = tbl.State()
	vmStart := time.Now()
	vm := rendering.BuildViewModel(name, ds.Title, tbl, m, q)
	timing.Record("Build ViewModel", time.Since(vmStart))

	if s.persist != nil {
		if err := tbl.Flush(ctx); err != nil {
			s.log.Warn().Err(err).Str("dataset", name).Msg("failed to save table state")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return &TablePage{ViewModel: vm, Self: q.ToSafeURL(), Diagnostics: diags}, nil
}

func (s *Server) openFailure(name string, err error) *TableHandlerResult {
	if errors.Is(err, datasources.ErrUnknownDataset) {
		return &TableHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Table '%s' not found", name), Error: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &TableHandlerResult{StatusCode: http.StatusServiceUnavailable, Message: "request canceled", Error: err}
	}
	s.log.Error().Err(err).Str("dataset", name).Msg("failed to open table")
	return &TableHandlerResult{StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("failed to open table '%s'", name), Error: err}
}

// TableResponse is the JSON body of GET /tables/{name}.
type TableResponse struct {
	Name          string         `json:"name"`
	Title         string         `json:"title"`
	Columns       []ColumnJSON   `json:"columns"`
	Rows          []RowJSON      `json:"rows"`
	Totals        map[string]any `json:"totals,omitempty"`
	GlobalFilter  string         `json:"globalFilter,omitempty"`
	FilteredCount int            `json:"filteredCount"`
	RowCount      int            `json:"rowCount"`
	Page          int            `json:"page"`
	PageCount     int            `json:"pageCount"`
	PageSize      int            `json:"pageSize"`
	AllSelected   bool           `json:"allSelected,omitempty"`
	SomeSelected  bool           `json:"someSelected,omitempty"`

	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`

	Diagnostics []string      `json:"diagnostics,omitempty"`
	Timing      []TimingEntry `json:"timing,omitempty"`
}

// ColumnJSON is one visible column.
type ColumnJSON struct {
	ID          string `json:"id"`
	Header      string `json:"header"`
	Width       int    `json:"width"`
	Pinned      string `json:"pinned,omitempty"`
	Sort        string `json:"sort,omitempty"`
	Grouped     bool   `json:"grouped,omitempty"`
	Aggregation string `json:"aggregation,omitempty"`
	Filter      string `json:"filter,omitempty"`
}

// RowJSON is one display row. Cells are keyed by column id.
type RowJSON struct {
	ID       string            `json:"id"`
	Depth    int               `json:"depth"`
	Group    bool              `json:"group,omitempty"`
	Label    string            `json:"label,omitempty"`
	Count    int               `json:"count,omitempty"`
	Cells    map[string]string `json:"cells"`
	Selected bool              `json:"selected,omitempty"`
	Expanded bool              `json:"expanded,omitempty"`
}

func newTableResponse(p *TablePage) TableResponse {
	vm := p.ViewModel
	resp := TableResponse{
		Name:          vm.Name,
		Title:         vm.Title,
		Columns:       make([]ColumnJSON, len(vm.Columns)),
		Rows:          make([]RowJSON, len(vm.Rows)),
		GlobalFilter:  vm.GlobalFilter,
		FilteredCount: vm.FilteredCount,
		RowCount:      vm.RowCount,
		Page:          vm.PageNumber,
		PageCount:     vm.PageCount,
		PageSize:      vm.PageSize,
		AllSelected:   vm.AllSelected,
		SomeSelected:  vm.SomeSelected,
		Self:          p.Self.String(),
		Diagnostics:   p.Diagnostics,
	}
	if vm.HasNext {
		resp.Next = vm.NextURL.String()
	}
	if vm.HasPrev {
		resp.Prev = vm.PrevURL.String()
	}
	for i, c := range vm.Columns {
		resp.Columns[i] = ColumnJSON{
			ID:          c.ID,
			Header:      c.Header,
			Width:       c.Width,
			Pinned:      c.Pinned,
			Sort:        c.Sort,
			Grouped:     c.Grouped,
			Aggregation: c.Aggregation,
			Filter:      c.Filter,
		}
	}
	for i, r := range vm.Rows {
		cells := make(map[string]string, len(vm.Columns))
		for j, c := range vm.Columns {
			if j < len(r.Cells) {
				cells[c.ID] = r.Cells[j]
			}
		}
		resp.Rows[i] = RowJSON{
			ID:       r.ID,
			Depth:    r.Depth,
			Group:    r.IsGroup,
			Label:    r.Label,
			Count:    r.Count,
			Cells:    cells,
			Selected: r.Selected,
			Expanded: r.Expanded,
		}
	}
	if vm.Totals != nil {
		resp.Totals = make(map[string]any)
		for i, c := range vm.Columns {
			if vm.Totals[i] != "" {
				resp.Totals[c.ID] = vm.Totals[i]
			}
		}
	}
	return resp
}

func (s *Server) handleTableJSON(w http.ResponseWriter, r *http.Request) {
	timing := NewTimingCollector()
	page, res := s.HandleTableRequest(r.Context(), r.URL, chi.URLParam(r, "name"), timing)
	if res != nil {
		writeError(w, res.StatusCode, res.Message)
		return
	}
	resp := newTableResponse(page)
	resp.Timing = timing.GetEntries()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTableHTML(w http.ResponseWriter, r *http.Request) {
	timing := NewTimingCollector()
	page, res := s.HandleTableRequest(r.Context(), r.URL, chi.URLParam(r, "name"), timing)
	if res != nil {
		http.Error(w, res.Message, res.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, page.ViewModel); err != nil {
		s.log.Error().Err(err).Msg("template rendering error")
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
	s.log.Debug().Str("dataset", page.ViewModel.Name).Str("total_ms", timing.TotalMs()).Msg("rendered")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	vm := rendering.LandingViewModel{Title: s.title}
	for _, info := range s.manager.List() {
		link := &url.URL{Path: "/view/" + info.Name}
		vm.Datasets = append(vm.Datasets, rendering.DatasetLink{
			Name:        info.Name,
			Title:       info.Title,
			Description: info.Description,
			Rows:        info.Rows,
			URL:         safehtml.URLSanitized(link.String()),
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderLanding(w, vm); err != nil {
		s.log.Error().Err(err).Msg("landing page rendering error")
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}
}

// errorResponse is the JSON body of a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
