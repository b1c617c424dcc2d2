package dashboard

import (
	"bi_dashboard/internal/api"
	"bi_dashboard/internal/reports"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"dashboard",
		fx.Provide(
			func(client *api.Client) reports.Fetcher { return client },
			NewSession,
		),
	)
}
