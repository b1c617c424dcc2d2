package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"bi_dashboard/internal/api"
	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/fetch"
	"bi_dashboard/internal/llm"
	"bi_dashboard/internal/render"

	"go.uber.org/zap"
)

type Runner struct {
	options   Options
	logger    *zap.Logger
	client    *api.Client
	session   *dashboard.Session
	group     *fetch.Group
	renderer  *render.Renderer
	llmClient *llm.Client

	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

func NewRunner(opts Options, logger *zap.Logger, client *api.Client, session *dashboard.Session, group *fetch.Group, renderer *render.Renderer, llmClient *llm.Client) *Runner {
	return &Runner{
		options:   opts,
		logger:    logger.Named("cli"),
		client:    client,
		session:   session,
		group:     group,
		renderer:  renderer,
		llmClient: llmClient,
		in:        os.Stdin,
		out:       os.Stdout,
	}
}

// Execute runs the command until it finishes or SIGINT/SIGTERM arrives.
func (r *Runner) Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := r.Run(ctx); err != nil {
		r.logger.Error("command failed", zap.String("command", r.options.Command), zap.Error(err))
		return &commandError{err: err}
	}
	return nil
}

func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("command",
		zap.String("command", r.options.Command),
		zap.Strings("args", r.options.Args),
		zap.String("from", r.options.From),
		zap.String("to", r.options.To),
		zap.Bool("json", r.options.JSON),
	)

	from, to, err := r.options.period()
	if err != nil {
		return err
	}
	if !from.IsZero() || !to.IsZero() {
		if err := r.session.SetRange(ctx, from, to); err != nil {
			return err
		}
	}

	switch r.options.Command {
	case cmdReports:
		return r.runReports()
	case cmdShow:
		return r.runShow(ctx, r.options.Args[0])
	case cmdExport:
		return r.runExport(ctx, r.options.Args[0])
	case cmdDashboard:
		return r.runDashboard(ctx, r.options.Args)
	case cmdRaw:
		return r.runRaw(ctx, r.options.Args[0])
	case cmdAsk:
		return r.handleQuery(ctx, strings.Join(r.options.Args, " "), false, nil)
	default:
		return r.runREPL(ctx)
	}
}

func (r *Runner) print(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, s)
}

func (r *Runner) printf(format string, args ...any) {
	r.print(fmt.Sprintf(format, args...))
}

func (r *Runner) printError(err error) {
	r.print(r.renderer.Error("Error", friendlyError(err)))
}
