package controllers_fx

import (
	"go.uber.org/fx"

	"lovematch/internal/api/controllers"
	"lovematch/internal/config"
	"lovematch/internal/services"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAssessmentController),
	fx.Provide(provideCatalogController))

func provideCatalogController(
	catalog *config.Catalog,
	cfg *config.Config,
	gateway services.CompletionGateway,
) *controllers.CatalogController {
	return controllers.NewCatalogController(catalog, cfg.LLM.Provider, gateway.ModelID())
}
