package internal

import (
	"context"
	"errors"
	"os"

	"bi_dashboard/internal/api"
	"bi_dashboard/internal/cli"
	"bi_dashboard/internal/config"
	"bi_dashboard/internal/dashboard"
	"bi_dashboard/internal/export"
	"bi_dashboard/internal/fetch"
	"bi_dashboard/internal/llm"
	"bi_dashboard/internal/logging"
	"bi_dashboard/internal/render"
	"bi_dashboard/internal/reports"

	"github.com/go-core-fx/logger"
	"github.com/spf13/pflag"
	"go.uber.org/fx"
)

func Run() error {
	opts, err := cli.ParseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		fx.Supply(opts),
		fx.Decorate(opts.Apply),
		logging.Module(),
		api.Module(),
		reports.Module(),
		fetch.Module(),
		export.Module(),
		render.Module(),
		dashboard.Module(),
		llm.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
