package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/services/imports"
	"github.com/meghashyamc/sitesearch/validation"
)

type ImportRequest struct {
	Path string `json:"path" validate:"valid_path"`
}

type ImportResponse struct {
	ID string `json:"id"`
}

type ImportStatusResponse struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
}

func SetupImports(router *gin.Engine, logger logger.Logger, service *imports.Service, validator *validation.Validator) {
	router.POST("/import", handleImport(service, logger, validator))
	router.GET("/import/:id", handleImportStatus(service, logger))
}

func handleImport(service *imports.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ImportRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected body params from the input for import", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		requestID := uuid.New().String()
		if err := service.Start(request.Path, requestID); err != nil {
			logger.Warn("could not start import", "err", err.Error())
			c.Abort()
			status := http.StatusInternalServerError
			if errors.Is(err, imports.ErrImportInProgress) {
				status = http.StatusConflict
			}
			writeResponse(c, nil, status, []string{err.Error()})
			return
		}

		writeResponse(c, ImportResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func handleImportStatus(service *imports.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")
		if _, err := uuid.Parse(requestID); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusBadRequest, []string{"invalid import id"})
			return
		}

		progress, err := service.GetStatus(requestID)
		if err != nil {
			c.Abort()
			if errors.Is(err, imports.ErrRequestNotFound) {
				writeResponse(c, nil, http.StatusNotFound, []string{"import not found"})
				return
			}
			logger.Error("could not get import status", "request_id", requestID, "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, ImportStatusResponse{ID: requestID, Progress: progress}, http.StatusOK, nil)
	}
}
