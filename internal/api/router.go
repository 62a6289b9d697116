// Package api exposes grids and scenario statistics over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"powersimdata/internal/api/handlers"
	"powersimdata/internal/api/middleware"
	"powersimdata/internal/data"
	"powersimdata/internal/grid"
)

// Options configure the router.
type Options struct {
	Grids          *grid.Cache
	GridDataDir    string
	Scenarios      handlers.ScenarioSource
	Infos          *data.MemoryCache
	AllowedOrigins []string
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	gridHandler := handlers.NewGridHandler(opts.Grids, opts.GridDataDir)
	scenarioHandler := handlers.NewScenarioHandler(opts.Scenarios, opts.Infos)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/grids/:interconnect", gridHandler.ListFields)
		api.GET("/grids/:interconnect/fields/:field", gridHandler.GetField)
		api.GET("/grids/:interconnect/transforms/:name", gridHandler.GetTransform)

		api.GET("/scenarios", scenarioHandler.ListScenarios)
		api.GET("/scenarios/:scenario/input/:field", scenarioHandler.GetInput)
		api.GET("/scenarios/:scenario/info", scenarioHandler.GetInfo)
		api.GET("/scenarios/:scenario/rank", scenarioHandler.RankResources)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
