package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bi_dashboard/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Result struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// Group runs independent loads side by side. A failing load never cancels
// its siblings; each result is reported as soon as it is ready.
type Group struct {
	limit  int
	logger *zap.Logger
}

func NewGroup(cfg config.Config, logger *zap.Logger) *Group {
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = 1
	}
	return &Group{limit: limit, logger: logger.Named("fetch")}
}

// Run starts every task and waits for all of them. onDone, when set, is
// called once per task in completion order and never concurrently. The
// returned error joins the failures.
func (g *Group) Run(ctx context.Context, tasks []Task, onDone func(Result)) error {
	var eg errgroup.Group
	eg.SetLimit(g.limit)

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, task := range tasks {
		eg.Go(func() error {
			started := time.Now()
			err := task.Run(ctx)
			res := Result{Name: task.Name, Err: err, Elapsed: time.Since(started)}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", task.Name, err))
			}
			if onDone != nil {
				onDone(res)
			}
			return nil
		})
	}
	_ = eg.Wait()

	g.logger.Debug("group finished", zap.Int("tasks", len(tasks)), zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
