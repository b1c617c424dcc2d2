package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bi_dashboard/internal/export"
	"bi_dashboard/internal/fetch"
	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"go.uber.org/zap"
)

var (
	ErrNoTab     = errors.New("no report selected")
	ErrNotLoaded = errors.New("report not loaded yet")
)

// View is what the active tab shows right now.
type View struct {
	Tab      string
	State    fetch.Snapshot[*reports.Dataset]
	Query    table.Query
	Frame    table.Frame
	Expanded string
	Detail   table.Frame
}

// Session holds the interactive state of the dashboard: the active tab, one
// load state per report, and the search, sort, expanded row and date range
// the user picked.
type Session struct {
	catalog  *reports.Catalog
	client   reports.Fetcher
	exporter *export.Exporter
	logger   *zap.Logger

	mu       sync.Mutex
	tab      string
	states   map[string]*fetch.State[*reports.Dataset]
	search   string
	sort     *table.SortState
	expanded string
	params   reports.Params
}

func NewSession(catalog *reports.Catalog, client reports.Fetcher, exporter *export.Exporter, logger *zap.Logger) *Session {
	return &Session{
		catalog:  catalog,
		client:   client,
		exporter: exporter,
		logger:   logger.Named("dashboard"),
		states:   make(map[string]*fetch.State[*reports.Dataset]),
	}
}

func (s *Session) Catalog() *reports.Catalog {
	return s.catalog
}

func (s *Session) Tab() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

func (s *Session) Params() reports.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetTab switches the active report. Search, sort and expanded row start
// fresh; the report is fetched the first time it is opened.
func (s *Session) SetTab(ctx context.Context, name string) error {
	if _, err := s.catalog.Lookup(name); err != nil {
		return err
	}

	s.mu.Lock()
	s.tab = name
	s.search = ""
	s.sort = nil
	s.expanded = ""
	state := s.stateLocked(name)
	s.mu.Unlock()

	if snap := state.Snapshot(); snap.Loaded || snap.Loading {
		return nil
	}
	return s.load(ctx, name)
}

func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// ToggleSort sorts by key, flipping the direction when key is already the
// sort column.
func (s *Session) ToggleSort(key string) (table.SortState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.datasetLocked()
	if err != nil {
		return table.SortState{}, err
	}
	h, ok := ds.Header(key)
	if !ok {
		return table.SortState{}, fmt.Errorf("sort by %q: %w", key, table.ErrUnknownColumn)
	}
	current := ds.DefaultSort()
	if s.sort != nil {
		current = *s.sort
	}
	next := current.Toggle(h)
	s.sort = &next
	return next, nil
}

// SetSort sorts by key in an explicit direction.
func (s *Session) SetSort(key string, desc bool) (table.SortState, error) {
	return s.setSort(key, func(table.Header) bool { return desc })
}

// SortBy starts a fresh sort on key in the column's default direction.
func (s *Session) SortBy(key string) (table.SortState, error) {
	return s.setSort(key, func(h table.Header) bool { return h.DefaultDesc })
}

func (s *Session) setSort(key string, desc func(table.Header) bool) (table.SortState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.datasetLocked()
	if err != nil {
		return table.SortState{}, err
	}
	h, ok := ds.Header(key)
	if !ok {
		return table.SortState{}, fmt.Errorf("sort by %q: %w", key, table.ErrUnknownColumn)
	}
	next := table.SortState{Key: key, Desc: desc(h)}
	s.sort = &next
	return next, nil
}

// Expand opens the detail of one row. Expanding the open row closes it.
func (s *Session) Expand(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.expanded == id {
		s.expanded = ""
		return false, nil
	}
	ds, err := s.datasetLocked()
	if err != nil {
		return false, err
	}
	if _, err := ds.Detail(id); err != nil {
		return false, err
	}
	s.expanded = id
	return true, nil
}

// SetRange changes the reporting period. Everything derived from the old
// period is dropped and the active report is fetched again.
func (s *Session) SetRange(ctx context.Context, from, to time.Time) error {
	params := reports.Params{From: from, To: to}
	if err := params.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.params = params
	s.search = ""
	s.sort = nil
	s.expanded = ""
	for _, state := range s.states {
		state.Reset()
	}
	tab := s.tab
	s.mu.Unlock()

	if tab == "" {
		return nil
	}
	return s.load(ctx, tab)
}

func (s *Session) Refresh(ctx context.Context) error {
	tab := s.Tab()
	if tab == "" {
		return ErrNoTab
	}
	return s.load(ctx, tab)
}

func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tab == "" {
		return View{}, ErrNoTab
	}
	v := View{
		Tab:      s.tab,
		State:    s.stateLocked(s.tab).Snapshot(),
		Expanded: s.expanded,
	}
	ds := v.State.Data
	if ds == nil {
		return v, nil
	}
	v.Query = s.queryLocked(ds)
	frame, err := ds.Apply(v.Query)
	if err != nil {
		return v, err
	}
	v.Frame = frame
	if s.expanded != "" {
		if detail, err := ds.Detail(s.expanded); err == nil {
			v.Detail = detail
		}
	}
	return v, nil
}

// Export writes the rows currently on screen.
func (s *Session) Export(format export.Format, path string) (string, error) {
	v, err := s.View()
	if err != nil {
		return "", err
	}
	ds := v.State.Data
	if ds == nil {
		return "", ErrNotLoaded
	}
	req := export.Request{
		Report: ds.Report,
		Title:  ds.Title,
		From:   ds.Params.From,
		To:     ds.Params.To,
		Frame:  v.Frame,
		Format: format,
		Path:   path,
	}
	if ds.Summary != nil {
		req.Totals = ds.Summary.Totals()
	}
	return s.exporter.Export(req)
}

// State returns the load state of a report, creating it on first use.
func (s *Session) State(name string) *fetch.State[*reports.Dataset] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(name)
}

func (s *Session) load(ctx context.Context, name string) error {
	report, err := s.catalog.Lookup(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	state := s.stateLocked(name)
	params := s.params
	s.mu.Unlock()

	return state.Load(ctx, func(ctx context.Context) (*reports.Dataset, error) {
		return report.Fetch(ctx, s.client, params)
	})
}

func (s *Session) stateLocked(name string) *fetch.State[*reports.Dataset] {
	state, ok := s.states[name]
	if !ok {
		state = fetch.NewState[*reports.Dataset](name, s.logger)
		s.states[name] = state
	}
	return state
}

func (s *Session) datasetLocked() (*reports.Dataset, error) {
	if s.tab == "" {
		return nil, ErrNoTab
	}
	ds := s.stateLocked(s.tab).Snapshot().Data
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

func (s *Session) queryLocked(ds *reports.Dataset) table.Query {
	q := table.Query{Search: s.search, Sort: ds.DefaultSort()}
	if s.sort != nil {
		q.Sort = *s.sort
	}
	return q
}
