package dashboard

import (
	"context"

	"bi_dashboard/internal/fetch"
	"bi_dashboard/internal/reports"
)

// Panel is one report of the overview as it finished loading.
type Panel struct {
	Name   string
	Result fetch.Result
	State  fetch.Snapshot[*reports.Dataset]
}

// LoadOverview fetches several reports at once with the session's date
// range. onPanel fires as each report lands, in completion order, so the
// caller can print partial results; a failing report never stops the rest.
func (s *Session) LoadOverview(ctx context.Context, group *fetch.Group, names []string, onPanel func(Panel)) error {
	if len(names) == 0 {
		names = s.catalog.Names()
	}
	tasks := make([]fetch.Task, 0, len(names))
	for _, name := range names {
		if _, err := s.catalog.Lookup(name); err != nil {
			return err
		}
		tasks = append(tasks, fetch.Task{
			Name: name,
			Run: func(ctx context.Context) error {
				return s.load(ctx, name)
			},
		})
	}

	return group.Run(ctx, tasks, func(res fetch.Result) {
		if onPanel == nil {
			return
		}
		onPanel(Panel{
			Name:   res.Name,
			Result: res,
			State:  s.State(res.Name).Snapshot(),
		})
	})
}
