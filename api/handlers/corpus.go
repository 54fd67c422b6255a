package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/sitesearch/db/searchdb"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/metrics"
)

type CorpusSource interface {
	Corpus() ([]searchdb.Document, error)
}

func SetupCorpus(router *gin.Engine, logger logger.Logger, source CorpusSource) {
	router.GET("/search.json", handleCorpus(source, logger))
}

// handleCorpus serves the whole corpus as a bare JSON array, the shape the
// search widget fetches.
func handleCorpus(source CorpusSource, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		documents, err := source.Corpus()
		if err != nil {
			logger.Error("could not build search corpus", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not build search corpus"})
			return
		}

		metrics.ObserveCorpus(len(documents))
		c.JSON(http.StatusOK, documents)
	}
}
