package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meghashyamc/sitesearch/db/searchdb"
)

// maxCorpusSize bounds how much of the corpus response is read.
const maxCorpusSize = 64 * 1024 * 1024

type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport}
	}
	return &HTTPFetcher{url: url, client: client}
}

func (f *HTTPFetcher) Source() string {
	return f.url
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]searchdb.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create corpus request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch corpus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected corpus response status %d", resp.StatusCode)
	}

	var documents []searchdb.Document
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxCorpusSize))
	if err := decoder.Decode(&documents); err != nil {
		return nil, fmt.Errorf("malformed corpus after %s: %w", time.Since(start), err)
	}
	if documents == nil {
		return nil, fmt.Errorf("malformed corpus: expected a JSON array of documents")
	}

	return documents, nil
}
