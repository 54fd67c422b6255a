// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/sitesearch/config"
	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/db/migrations"
	"github.com/meghashyamc/sitesearch/logger"
	"github.com/meghashyamc/sitesearch/services/content"
	"github.com/meghashyamc/sitesearch/services/imports"
	"github.com/meghashyamc/sitesearch/services/shortcode"
	"github.com/meghashyamc/sitesearch/services/theme"
	"github.com/meghashyamc/sitesearch/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

var testFiles = map[string]string{
	"posts/2021-06-01-tomatoes.md": "---\ntitle: Growing Tomatoes\ntags: [garden]\n---\nTomatoes need sun.",
	"posts/2022-01-10-bread.md":    "---\ntitle: Baking Bread\n---\nKnead the dough {{% admonition tip %}}slowly{{% /admonition %}}.",
	"about.md":                     "---\ntitle: About\nsort_order: 1\n---\nHello, I write about food.",
	"galleries/trip.md":            "---\ntitle: Trip\n---\nNot imported.",
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse *response
}

type testServer struct {
	router  *gin.Engine
	content *content.Service
	imports *imports.Service
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	t.Setenv("ENV", "test")
	t.Setenv("KVDB_PATH", filepath.Join(t.TempDir(), "content.db"))

	cfg, err := config.Load("")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	kvDB, err := kvdb.New(testLogger, cfg.GetKVDBPath())
	assert.NoError(err, "could not create kv database")
	t.Cleanup(func() {
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	_, err = migrations.NewMigrator(testLogger, kvDB, migrations.All()).Up()
	assert.NoError(err, "could not run migrations")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")
	registry, err := shortcode.Load()
	assert.NoError(err, "could not load shortcodes")

	contentService := content.New(testLogger, kvDB, validator, registry)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	importService := imports.New(ctx, testLogger, content.NewImporter(testLogger, contentService), kvDB)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupCorpus(router, testLogger, contentService)
	SetupContent(router, testLogger, contentService, validator)
	SetupImports(router, testLogger, importService, validator)
	SetupTheme(router, testLogger, theme.New(testLogger, kvDB), validator)

	return &testServer{router: router, content: contentService, imports: importService}
}

func writeTestFiles(assert *require.Assertions, root string) {
	for relPath, body := range testFiles {
		fullPath := filepath.Join(root, relPath)
		err := os.MkdirAll(filepath.Dir(fullPath), 0755)
		assert.NoError(err, "could not create test sub-directory")
		err = os.WriteFile(fullPath, []byte(body), 0644)
		assert.NoError(err, "could not write test file")
	}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		endpoint = endpoint + "?"
		for key, value := range queryParams {
			if endpoint[len(endpoint)-1] != '?' {
				endpoint = endpoint + "&"
			}
			endpoint = endpoint + key + "=" + value
		}
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	slog.Info("Making test request", "method", method, "endpoint", endpoint, "headers", headers, "body", string(jsonBody))

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

func decodeData[T any](assert *require.Assertions, w *httptest.ResponseRecorder) T {
	var envelope struct {
		Data   T        `json:"data"`
		Errors []string `json:"errors"`
	}
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &envelope), "could not unmarshal response %s", w.Body.String())
	return envelope.Data
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) response {
	var actual response
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &actual), "could not unmarshal response %s", w.Body.String())
	return actual
}
