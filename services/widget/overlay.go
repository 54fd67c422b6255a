package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

const noResultsMessage = "No results found"

type OverlayItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Overlay is one rendering of the results panel. Every search produces a new
// Overlay; it is replaced or removed as a whole, never edited in place.
type Overlay struct {
	Seq   uint64        `json:"seq"`
	Query string        `json:"query"`
	Items []OverlayItem `json:"items"`
}

func (o *Overlay) Empty() bool {
	return len(o.Items) == 0
}

var overlayTemplate = template.Must(template.New("overlay").Parse(`<dialog open>
  <article class="search-modal">
    <header>
      <button aria-label="Close" rel="prev" onclick="this.closest('dialog').remove()"></button>
      <h3>Search Results for "{{.Query}}"</h3>
    </header>
{{- if .Items}}
    <ul class="search-results-list">
{{- range .Items}}
      <li><a href="{{.URL}}"><strong>{{.Title}}</strong></a></li>
{{- end}}
    </ul>
{{- else}}
    <p>{{.NoResults}}</p>
{{- end}}
  </article>
</dialog>`))

// HTML renders the overlay as a dismissible dialog.
func (o *Overlay) HTML() (string, error) {
	var buf bytes.Buffer
	err := overlayTemplate.Execute(&buf, struct {
		Query     string
		Items     []OverlayItem
		NoResults string
	}{
		Query:     o.Query,
		Items:     o.Items,
		NoResults: noResultsMessage,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text renders the overlay for a terminal, one numbered result per line.
func (o *Overlay) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search Results for %q\n", o.Query)
	if o.Empty() {
		b.WriteString("  " + noResultsMessage + "\n")
		return b.String()
	}
	for i, item := range o.Items {
		fmt.Fprintf(&b, "  %d. %s  %s\n", i+1, item.Title, item.URL)
	}
	return b.String()
}
