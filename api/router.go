package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/sitesearch/api/handlers"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/metrics"
	"github.com/meghashyamc/sitesearch/services/content"
	"github.com/meghashyamc/sitesearch/services/imports"
	"github.com/meghashyamc/sitesearch/services/theme"
	"github.com/meghashyamc/sitesearch/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type services struct {
	content *content.Service
	imports *imports.Service
	theme   *theme.Switcher
}

func setupRoutes(router *gin.Engine, logger logger.Logger, services services, validator *validation.Validator) {
	router.GET("/health", health())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.SetupCorpus(router, logger, services.content)
	handlers.SetupContent(router, logger, services.content, validator)
	handlers.SetupImports(router, logger, services.imports, validator)
	handlers.SetupTheme(router, logger, services.theme, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(_CORSMiddleware())

	return router
}
