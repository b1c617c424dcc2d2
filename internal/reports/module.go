package reports

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"reports",
		fx.Provide(DefaultCatalog),
	)
}
