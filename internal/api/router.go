package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lovematch/internal/api/controllers"
	"lovematch/pkg/middleware"
)

func NewRouter(
	logger *zap.Logger,
	allowedOrigins []string,
	assessmentController *controllers.AssessmentController,
	catalogController *controllers.CatalogController,
) *gin.Engine {
	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	RegisterRoutes(r, assessmentController, catalogController)
	// The original web client calls the same endpoints under /api.
	RegisterRoutes(r.Group("/api"), assessmentController, catalogController)

	return r
}

func RegisterRoutes(r gin.IRouter,
	assessmentController *controllers.AssessmentController,
	catalogController *controllers.CatalogController) {

	r.POST("/questions", assessmentController.GenerateQuestionsHandler)
	r.POST("/analyze", assessmentController.AnalyzeHandler)
	r.POST("/followup", assessmentController.FollowUpHandler)

	r.GET("/options", catalogController.ListOptionsHandler)
	r.GET("/health", catalogController.HealthHandler)
}
