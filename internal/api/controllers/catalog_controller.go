package controllers

import (
	"github.com/gin-gonic/gin"

	"lovematch/internal/config"
	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

type CatalogController struct {
	catalog  *config.Catalog
	provider string
	model    string
}

// NewCatalogController serves the read-only endpoints. The catalog is
// loaded once at startup and never changes.
func NewCatalogController(catalog *config.Catalog, provider, model string) *CatalogController {
	return &CatalogController{
		catalog:  catalog,
		provider: provider,
		model:    model,
	}
}

// GET /options
func (cc *CatalogController) ListOptionsHandler(c *gin.Context) {
	utils.RespondSuccess(c, cc.catalog)
}

// GET /health
func (cc *CatalogController) HealthHandler(c *gin.Context) {
	utils.RespondSuccess(c, response_models.HealthResponse{
		Status:   "ok",
		Provider: cc.provider,
		Model:    cc.model,
	})
}
