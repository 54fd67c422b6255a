package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/services/content"
)

const defaultPageSize = 20

type PostRequest struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Published     time.Time `json:"published"`
	Tags          []string  `json:"tags"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	FeaturedImage string    `json:"featured_image"`
}

type PageRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sort_order"`
}

type ListQuery struct {
	Limit  int `form:"limit" json:"limit" validate:"min=0,max=100"`
	Offset int `form:"offset" json:"offset" validate:"min=0"`
}

type PostsResponse struct {
	Posts      []content.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

type PagesResponse struct {
	Pages      []content.Page `json:"pages"`
	Pagination Pagination     `json:"pagination"`
}

type Validator interface {
	Validate(i any) error
}

func SetupContent(router *gin.Engine, logger logger.Logger, service *content.Service, validator Validator) {
	router.POST("/posts", handleSavePost(service, logger))
	router.GET("/posts", handleListPosts(service, logger, validator))
	router.DELETE("/posts/:id", handleDelete(service.DeletePost, logger))

	router.POST("/pages", handleSavePage(service, logger))
	router.GET("/pages", handleListPages(service, logger, validator))
	router.DELETE("/pages/:id", handleDelete(service.DeletePage, logger))
}

func handleSavePost(service *content.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := PostRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected body params from the input for post", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		post, err := service.SavePost(content.Post{
			Title:         request.Title,
			Content:       request.Content,
			Published:     request.Published,
			Tags:          request.Tags,
			Slug:          request.Slug,
			Excerpt:       request.Excerpt,
			FeaturedImage: request.FeaturedImage,
		})
		if err != nil {
			writeSaveError(c, logger, err)
			return
		}

		writeResponse(c, post, http.StatusCreated, nil)
	}
}

func handleSavePage(service *content.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := PageRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected body params from the input for page", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		page, err := service.SavePage(content.Page{
			Title:     request.Title,
			Content:   request.Content,
			Slug:      request.Slug,
			SortOrder: request.SortOrder,
		})
		if err != nil {
			writeSaveError(c, logger, err)
			return
		}

		writeResponse(c, page, http.StatusCreated, nil)
	}
}

func writeSaveError(c *gin.Context, logger logger.Logger, err error) {
	c.Abort()
	if errors.Is(err, content.ErrInvalidRecord) {
		logger.Warn("could not validate record", "err", err.Error())
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return
	}
	logger.Error("could not save record", "err", err.Error())
	writeResponse(c, nil, http.StatusInternalServerError, []string{"could not save record"})
}

func handleListPosts(service *content.Service, logger logger.Logger, validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, ok := bindListQuery(c, logger, validator)
		if !ok {
			return
		}

		posts, total, err := service.ListPosts(query.Limit, query.Offset)
		if err != nil {
			logger.Error("could not list posts", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not list posts"})
			return
		}

		writeResponse(c, PostsResponse{
			Posts:      posts,
			Pagination: calculatePagination(total, query.Limit, query.Offset),
		}, http.StatusOK, nil)
	}
}

func handleListPages(service *content.Service, logger logger.Logger, validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, ok := bindListQuery(c, logger, validator)
		if !ok {
			return
		}

		pages, total, err := service.ListPages(query.Limit, query.Offset)
		if err != nil {
			logger.Error("could not list pages", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not list pages"})
			return
		}

		writeResponse(c, PagesResponse{
			Pages:      pages,
			Pagination: calculatePagination(total, query.Limit, query.Offset),
		}, http.StatusOK, nil)
	}
}

func bindListQuery(c *gin.Context, logger logger.Logger, validator Validator) (ListQuery, bool) {
	query := ListQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.Warn("could not extract expected query params from the input", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract query parameters"})
		return ListQuery{}, false
	}
	if err := validator.Validate(query); err != nil {
		logger.Warn("could not validate request", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return ListQuery{}, false
	}

	if query.Limit == 0 {
		query.Limit = defaultPageSize
	}
	return query, true
}

func handleDelete(deleteRecord func(id string) error, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := deleteRecord(id); err != nil {
			c.Abort()
			if errors.Is(err, content.ErrRecordNotFound) {
				writeResponse(c, nil, http.StatusNotFound, []string{"record not found"})
				return
			}
			logger.Error("could not delete record", "id", id, "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{"could not delete record"})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}
