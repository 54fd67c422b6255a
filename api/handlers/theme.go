package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/services/theme"
)

const (
	visitorCookie       = "visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

type ThemeRequest struct {
	Theme string `json:"theme" validate:"valid_theme"`
}

type ThemeResponse struct {
	Theme theme.Theme `json:"theme"`
}

func SetupTheme(router *gin.Engine, logger logger.Logger, switcher *theme.Switcher, validator Validator) {
	router.GET("/theme", handleGetTheme(switcher, logger))
	router.POST("/theme/toggle", handleToggleTheme(switcher, logger))
	router.PUT("/theme", handleSetTheme(switcher, logger, validator))
}

func handleGetTheme(switcher *theme.Switcher, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := switcher.Current(visitorID(c))
		if err != nil {
			logger.Error("could not get theme", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not get theme"})
			return
		}
		writeResponse(c, ThemeResponse{Theme: current}, http.StatusOK, nil)
	}
}

func handleToggleTheme(switcher *theme.Switcher, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		next, err := switcher.Toggle(visitorID(c))
		if err != nil {
			logger.Error("could not toggle theme", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not toggle theme"})
			return
		}
		writeResponse(c, ThemeResponse{Theme: next}, http.StatusOK, nil)
	}
}

func handleSetTheme(switcher *theme.Switcher, logger logger.Logger, validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ThemeRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected body params from the input for theme", "err", err.Error())
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

		if err := switcher.Set(visitorID(c), theme.Theme(request.Theme)); err != nil {
			logger.Error("could not set theme", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not set theme"})
			return
		}
		writeResponse(c, ThemeResponse{Theme: theme.Theme(request.Theme)}, http.StatusOK, nil)
	}
}

// visitorID returns the visitor cookie, issuing a new one when it is missing or malformed.
func visitorID(c *gin.Context) string {
	if id, err := c.Cookie(visitorCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, id, visitorCookieMaxAge, "/", "", false, true)
	return id
}
