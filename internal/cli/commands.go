package cli

import (
	"context"
	"errors"

	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/render"
	"bi_dashboard/internal/reports"
	"bi_dashboard/internal/table"

	"go.uber.org/zap"
)

type columnInfo struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

type reportInfo struct {
	Name        string       `json:"name"`
	Title       string       `json:"title"`
	Endpoint    string       `json:"endpoint"`
	Columns     []columnInfo `json:"columns"`
	DefaultSort string       `json:"default_sort,omitempty"`
}

func describeReports(catalog *reports.Catalog) []reportInfo {
	all := catalog.All()
	out := make([]reportInfo, 0, len(all))
	for _, rep := range all {
		info := reportInfo{
			Name:     rep.Name(),
			Title:    rep.Title(),
			Endpoint: rep.Endpoint(),
		}
		for _, h := range rep.Headers() {
			info.Columns = append(info.Columns, columnInfo{Key: h.Key, Title: h.Title, Kind: h.Kind.String()})
		}
		if s := rep.DefaultSort(); s.Key != "" {
			info.DefaultSort = s.Key + " " + s.Direction()
		}
		out = append(out, info)
	}
	return out
}

func (r *Runner) runReports() error {
	infos := describeReports(r.session.Catalog())
	if r.options.JSON {
		return render.WriteJSON(r.out, infos)
	}
	for _, info := range infos {
		r.printf("%-18s %s\n", info.Name, info.Title)
	}
	return nil
}

// openReport makes name the active tab and applies --search and --sort.
func (r *Runner) openReport(ctx context.Context, name string) error {
	if err := r.session.SetTab(ctx, name); err != nil {
		return err
	}
	r.session.SetSearch(r.options.Search)
	if r.options.Sort == "" {
		return nil
	}
	var err error
	switch {
	case r.options.Asc:
		_, err = r.session.SetSort(r.options.Sort, false)
	case r.options.Desc:
		_, err = r.session.SetSort(r.options.Sort, true)
	default:
		_, err = r.session.SortBy(r.options.Sort)
	}
	return err
}

func (r *Runner) runShow(ctx context.Context, name string) error {
	if err := r.openReport(ctx, name); err != nil {
		return err
	}
	v, err := r.session.View()
	if err != nil {
		return err
	}
	if v.State.Data == nil {
		return dashboard.ErrNotLoaded
	}
	if r.options.JSON {
		return render.WriteJSON(r.out, r.renderer.ReportJSON(v.State.Data, v.Frame))
	}
	r.print(r.renderer.Report(v.State.Data, v.Frame, r.options.Limit))
	return nil
}

type exportResult struct {
	Report string `json:"report"`
	Path   string `json:"path"`
	Rows   int    `json:"rows"`
	Format string `json:"format"`
}

func (r *Runner) runExport(ctx context.Context, name string) error {
	if err := r.openReport(ctx, name); err != nil {
		return err
	}
	return r.exportView(r.options.exportFormat(), r.options.Out)
}

func (r *Runner) runDashboard(ctx context.Context, names []string) error {
	catalog := r.session.Catalog()
	var (
		failed  int
		results = map[string]any{}
		errs    = map[string]string{}
	)
	err := r.session.LoadOverview(ctx, r.group, names, func(p dashboard.Panel) {
		title := p.Name
		if rep, err := catalog.Lookup(p.Name); err == nil {
			title = rep.Title()
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		ds := p.State.Data
		if p.Result.Err != nil || ds == nil {
			failed++
			errs[p.Name] = p.State.Error
			if !r.options.JSON {
				r.out.Write([]byte(r.renderer.Error(title, p.State.Error) + "\n"))
			}
			return
		}
		frame, ferr := ds.Apply(table.Query{Search: r.options.Search, Sort: ds.DefaultSort()})
		if ferr != nil {
			failed++
			errs[p.Name] = ferr.Error()
			if !r.options.JSON {
				r.out.Write([]byte(r.renderer.Error(title, friendlyError(ferr)) + "\n"))
			}
			return
		}
		if r.options.JSON {
			results[p.Name] = r.renderer.ReportJSON(ds, frame)
			return
		}
		limit := r.options.Limit
		if limit == 0 {
			limit = dashboardRows
		}
		r.out.Write([]byte(r.renderer.Report(ds, frame, limit) + "\n"))
	})
	if errors.Is(err, reports.ErrUnknownReport) {
		return err
	}
	if err != nil {
		r.logger.Warn("dashboard loaded with errors", zap.Int("failed", failed), zap.Error(err))
	}

	if r.options.JSON {
		out := struct {
			Reports map[string]any    `json:"reports"`
			Errors  map[string]string `json:"errors,omitempty"`
		}{Reports: results, Errors: errs}
		if werr := render.WriteJSON(r.out, out); werr != nil {
			return werr
		}
	}

	total := len(names)
	if total == 0 {
		total = len(catalog.Names())
	}
	if failed > 0 && failed == total {
		return err
	}
	return nil
}

func (r *Runner) runRaw(ctx context.Context, path string) error {
	records, err := r.client.Raw(ctx, path, r.session.Params().Query())
	if err != nil {
		return err
	}
	frame, err := rawFrame(records, r.options.Search, r.rawSort())
	if err != nil {
		return err
	}
	if r.options.JSON {
		return render.WriteJSON(r.out, render.Rows(frame))
	}
	if frame.Empty() {
		r.print("No rows.\n")
		return nil
	}
	r.print(r.renderer.Table(frame, r.options.Limit) + "\n")
	r.print(render.Footer(len(records), frame, r.options.Limit) + "\n")
	return nil
}

func (r *Runner) rawSort() table.SortState {
	return table.SortState{Key: r.options.Sort, Desc: r.options.Desc}
}

// rawFrame lays out untyped records with inferred columns; every column is
// searchable.
func rawFrame(records []table.Record, search string, sortState table.SortState) (table.Frame, error) {
	columns := table.InferColumns(records)
	keys := make([]string, 0, len(columns))
	for _, col := range columns {
		keys = append(keys, col.Key)
	}
	view, err := table.NewView(columns, keys...)
	if err != nil {
		return table.Frame{}, err
	}
	return view.Materialize(records, table.Query{Search: search, Sort: sortState})
}
