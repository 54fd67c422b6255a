package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/meghashyamc/sitesearch/services/content"
	"github.com/stretchr/testify/require"
)

var savePostHandlerTestCases = []testCase{
	{
		name:           "NoRequestBody",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    nil,
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:           "MissingTitle",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"content": "body"},
		expectedStatus: http.StatusNotAcceptable,
		expectedResponse: &response{
			Errors: []string{"missing required field 'title'"},
		},
	},
	{
		name:           "InvalidSlug",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"title": "x", "content": "body", "slug": "Bad Slug"},
		expectedStatus: http.StatusNotAcceptable,
		expectedResponse: &response{
			Errors: []string{"invalid slug"},
		},
	},
	{
		name:           "UnknownShortcode",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"title": "x", "content": "{{< vimeo 1 >}}"},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "Success",
		requestHeaders: defaultTestRequestHeaders,
		requestBody:    map[string]any{"title": "Hello World", "content": "body", "tags": []string{"greeting"}},
		expectedStatus: http.StatusCreated,
	},
}

func TestHandleSavePost(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	for _, testCase := range savePostHandlerTestCases {

		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/posts", testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))
			if testCase.expectedResponse != nil {
				actual := decodeResponse(assert, w)
				assert.Equal(testCase.expectedResponse.Errors, actual.Errors)
			}

			if testCase.expectedStatus == http.StatusCreated {
				post := decodeData[content.Post](assert, w)
				assert.NotEmpty(post.ID)
				assert.Equal("hello-world", post.Slug)
				assert.False(post.Published.IsZero())
			}
		})
	}
}

func TestHandleSavePage(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/pages", defaultTestRequestHeaders, map[string]any{"title": "About", "content": "me", "sort_order": 2}, nil)
	assert.Equal(http.StatusCreated, w.Code, w.Body.String())
	page := decodeData[content.Page](assert, w)
	assert.Equal("about", page.Slug)
	assert.Equal(2, page.SortOrder)

	w = makeTestHTTPRequest(server.router, assert, http.MethodPost, "/pages", defaultTestRequestHeaders, map[string]any{"title": "Broken", "content": "{{% card %}}"}, nil)
	assert.Equal(http.StatusNotAcceptable, w.Code, w.Body.String())
}

var listPostsHandlerTestCases = []testCase{
	{
		name:           "DefaultWindow",
		expectedStatus: http.StatusOK,
	},
	{
		name:           "NegativeOffset",
		queryParams:    map[string]string{"offset": "-1"},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "LimitTooLarge",
		queryParams:    map[string]string{"limit": "500"},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "NonNumericLimit",
		queryParams:    map[string]string{"limit": "ten"},
		expectedStatus: http.StatusUnprocessableEntity,
	},
}

func TestHandleListPosts(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := server.content.SavePost(content.Post{Title: title, Content: "body"})
		assert.NoError(err)
	}

	for _, testCase := range listPostsHandlerTestCases {

		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/posts", testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))
		})
	}

	w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/posts", nil, nil, map[string]string{"limit": "2", "offset": "2"})
	assert.Equal(http.StatusOK, w.Code)
	posts := decodeData[PostsResponse](assert, w)
	assert.Len(posts.Posts, 1)
	assert.Equal(Pagination{
		CurrentPage:  2,
		PageSize:     2,
		TotalPages:   2,
		HasNextPage:  false,
		HasPrevPage:  true,
		TotalResults: 3,
	}, posts.Pagination)
}

func TestHandleListPages(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	_, err := server.content.SavePage(content.Page{Title: "Contact", Content: "mail", SortOrder: 2})
	assert.NoError(err)
	_, err = server.content.SavePage(content.Page{Title: "About", Content: "me", SortOrder: 1})
	assert.NoError(err)

	w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/pages", nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code)
	pages := decodeData[PagesResponse](assert, w)
	assert.Len(pages.Pages, 2)
	assert.Equal("About", pages.Pages[0].Title)
	assert.Equal(defaultPageSize, pages.Pagination.PageSize)
}

func TestHandleDelete(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	post, err := server.content.SavePost(content.Post{Title: "Short lived", Content: "body"})
	assert.NoError(err)
	page, err := server.content.SavePage(content.Page{Title: "Gone", Content: "body"})
	assert.NoError(err)

	type deleteCase struct {
		name           string
		endpoint       string
		expectedStatus int
	}

	for _, tc := range []deleteCase{
		{name: "PageIDOnPostsRoute", endpoint: "/posts/" + page.ID, expectedStatus: http.StatusNotFound},
		{name: "Post", endpoint: "/posts/" + post.ID, expectedStatus: http.StatusNoContent},
		{name: "PostAgain", endpoint: "/posts/" + post.ID, expectedStatus: http.StatusNotFound},
		{name: "Page", endpoint: "/pages/" + page.ID, expectedStatus: http.StatusNoContent},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodDelete, tc.endpoint, nil, nil, nil)
			assert.Equal(tc.expectedStatus, w.Code, w.Body.String())
		})
	}
}
