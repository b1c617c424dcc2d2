package llm

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"llm",
		fx.Decorate(func(logger *zap.Logger) *zap.Logger {
			return logger.Named("llm")
		}),
		fx.Provide(NewClient),
	)
}
