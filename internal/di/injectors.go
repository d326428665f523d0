//go:build wireinject
// +build wireinject

package di

import (
	"fcd/internal"
	"fcd/internal/chain"
	"fcd/internal/controllers"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fcd/internal/services"
	"fcd/internal/structures"
	"fcd/internal/torn"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		models.NewChainStore,
		chain.NewZstdCompressor,
		chain.NewArchive,
		wire.Bind(new(models.ArchiveInterface), new(*chain.Archive)),
		torn.NewClient,
		services.NewChainService,
		chain.NewFileManager,
		chain.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
