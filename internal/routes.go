package internal

import (
	"fcd/internal/controllers"
	"fcd/internal/providers"
	"fcd/internal/structures"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/chain", http.HandlerFunc(apiController.GetChain))
	routers.Get("/chains", http.HandlerFunc(apiController.GetChains))
	routers.Get("/chains/remote", http.HandlerFunc(apiController.GetRemoteChains))
	routers.Post("/sync", http.HandlerFunc(apiController.Sync))
	routers.Post("/import", http.HandlerFunc(apiController.ImportChain))
	routers.Post("/key", http.HandlerFunc(apiController.SetKey))
	routers.Delete("/key", http.HandlerFunc(apiController.DeleteKey))
	return routers
}
