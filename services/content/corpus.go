package content

import (
	"strings"

	"github.com/meghashyamc/sitesearch/db/searchdb"
)

// Corpus returns the search documents for every post, newest first,
// followed by every page.
func (s *Service) Corpus() ([]searchdb.Document, error) {
	posts, err := s.Posts()
	if err != nil {
		return nil, err
	}
	pages, err := s.Pages()
	if err != nil {
		return nil, err
	}

	documents := make([]searchdb.Document, 0, len(posts)+len(pages))
	for _, post := range posts {
		documents = append(documents, searchdb.Document{
			ID:    post.ID,
			Title: post.Title,
			Text:  s.searchableText(post.Content, post.Tags),
			URL:   post.URL(),
		})
	}
	for _, page := range pages {
		documents = append(documents, searchdb.Document{
			ID:    page.ID,
			Title: page.Title,
			Text:  s.searchableText(page.Content, nil),
			URL:   page.URL(),
		})
	}
	return documents, nil
}

func (s *Service) searchableText(body string, tags []string) string {
	text := s.shortcodes.Strip(body)
	if len(tags) == 0 {
		return text
	}
	return strings.TrimSpace(text + " " + strings.Join(tags, " "))
}
