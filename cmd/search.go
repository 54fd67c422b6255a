package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/meghashyamc/sitesearch/db/searchdb"
	"github.com/meghashyamc/sitesearch/services/corpus"
	"github.com/meghashyamc/sitesearch/services/search"
	"github.com/meghashyamc/sitesearch/services/widget"
	"github.com/urfave/cli/v2"
)

const corpusFetchTimeout = 30 * time.Second

// lineInput holds the last line typed at the prompt.
type lineInput struct {
	mu    sync.Mutex
	value string
}

func (i *lineInput) Value() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.value
}

func (i *lineInput) set(value string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.value = value
}

type terminalView struct {
	out io.Writer
}

func (v terminalView) SetExpanded(bool)     {}
func (v terminalView) SetPanelVisible(bool) {}

func (v terminalView) RenderOverlay(overlay *widget.Overlay) {
	fmt.Fprint(v.out, overlay.Text())
}

func (v terminalView) RemoveOverlay() {
	fmt.Fprintln(v.out, "(results closed)")
}

func (env *environment) searchCommand(c *cli.Context) error {
	corpusURL := c.String("url")
	if corpusURL == "" {
		corpusURL = env.cfg.GetCorpusURL()
	}

	var index searchdb.DB = searchdb.New(env.logger, searchdb.Options{
		TitleBoost: env.cfg.GetTitleBoost(),
		TextBoost:  searchdb.DefaultTextBoost,
		Fuzziness:  env.cfg.GetFuzziness(),
	})
	defer index.Close()

	fetcher := corpus.NewHTTPFetcher(corpusURL, &http.Client{Timeout: corpusFetchTimeout})
	loader := corpus.NewLoader(env.logger, fetcher, index)
	input := &lineInput{}
	searchBox := widget.New(env.logger, input, terminalView{out: env.stdout}, loader, search.New(env.logger, index),
		widget.WithDebounceDelay(env.cfg.GetDebounceDelay()))

	fmt.Fprintf(env.stdout, "Searching %s. Type a query and press Enter, an empty line closes the results.\n", corpusURL)
	searchBox.Focus(c.Context)

	scanner := bufio.NewScanner(env.stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			searchBox.Dismiss()
			continue
		}
		if !search.IsRunnable(line) {
			fmt.Fprintf(env.stdout, "queries need at least %d characters\n", search.MinQueryLength)
			continue
		}

		input.set(line)
		searchBox.Focus(c.Context)
		searchBox.KeyDown(c.Context, widget.KeyEnter)
	}
	searchBox.Blur()

	return scanner.Err()
}
