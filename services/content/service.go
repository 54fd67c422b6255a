package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/sitesearch/db/kvdb"
	"github.com/meghashyamc/sitesearch/db/migrations"
	"github.com/meghashyamc/sitesearch/logger"
)

type Validator interface {
	Validate(i any) error
}

// Shortcodes checks and removes the shortcode markup found in record content.
type Shortcodes interface {
	Validate(text string) error
	Strip(text string) string
}

// Service stores posts and pages in the collections created by migrations.
type Service struct {
	logger     logger.Logger
	store      kvdb.DB
	validator  Validator
	shortcodes Shortcodes

	// serialises writes so a slug maps to one record
	writeMu sync.Mutex
	now     func() time.Time
}

func New(logger logger.Logger, store kvdb.DB, validator Validator, shortcodes Shortcodes) *Service {
	return &Service{
		logger:     logger,
		store:      store,
		validator:  validator,
		shortcodes: shortcodes,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SavePost creates a post, or replaces the post that already has its slug.
// The slug is derived from the title when empty and published defaults to now.
// A title without letters or digits gets a new untitled slug of its own.
func (s *Service) SavePost(post Post) (Post, error) {
	if err := s.requireCollection(migrations.PostsCollection); err != nil {
		return Post{}, err
	}

	post.Title = strings.TrimSpace(post.Title)
	untitled := false
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
		untitled = post.Slug == untitledSlug
	}
	if post.Published.IsZero() {
		post.Published = s.now()
	}
	post.Tags = cleanTags(post.Tags)

	if err := s.validate(post, post.Content); err != nil {
		return Post{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	posts, err := loadAll[Post](s, migrations.PostsCollection)
	if err != nil {
		return Post{}, err
	}
	post.ID = ""
	for _, existing := range posts {
		if !untitled && existing.Slug == post.Slug {
			post.ID = existing.ID
			break
		}
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if untitled {
		post.Slug = untitledSlugFor(post.ID)
	}

	if err := s.put(migrations.PostsCollection, post.ID, post); err != nil {
		return Post{}, err
	}
	s.logger.Info("saved post", "id", post.ID, "slug", post.Slug)
	return post, nil
}

// SavePage creates a page, or replaces the page that already has its slug.
func (s *Service) SavePage(page Page) (Page, error) {
	if err := s.requireCollection(migrations.PagesCollection); err != nil {
		return Page{}, err
	}

	page.Title = strings.TrimSpace(page.Title)
	untitled := false
	if page.Slug == "" {
		page.Slug = Slugify(page.Title)
		untitled = page.Slug == untitledSlug
	}

	if err := s.validate(page, page.Content); err != nil {
		return Page{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	pages, err := loadAll[Page](s, migrations.PagesCollection)
	if err != nil {
		return Page{}, err
	}
	page.ID = ""
	for _, existing := range pages {
		if !untitled && existing.Slug == page.Slug {
			page.ID = existing.ID
			break
		}
	}
	if page.ID == "" {
		page.ID = uuid.New().String()
	}
	if untitled {
		page.Slug = untitledSlugFor(page.ID)
	}

	if err := s.put(migrations.PagesCollection, page.ID, page); err != nil {
		return Page{}, err
	}
	s.logger.Info("saved page", "id", page.ID, "slug", page.Slug)
	return page, nil
}

// ListPosts returns a window of posts, newest first, and the total count.
func (s *Service) ListPosts(limit, offset int) ([]Post, int, error) {
	posts, err := s.Posts()
	if err != nil {
		return nil, 0, err
	}
	return window(posts, limit, offset), len(posts), nil
}

// ListPages returns a window of pages by sort order, and the total count.
func (s *Service) ListPages(limit, offset int) ([]Page, int, error) {
	pages, err := s.Pages()
	if err != nil {
		return nil, 0, err
	}
	return window(pages, limit, offset), len(pages), nil
}

// Posts returns every post, newest first.
func (s *Service) Posts() ([]Post, error) {
	if err := s.requireCollection(migrations.PostsCollection); err != nil {
		return nil, err
	}
	posts, err := loadAll[Post](s, migrations.PostsCollection)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Published.Equal(posts[j].Published) {
			return posts[i].Published.After(posts[j].Published)
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

// Pages returns every page ordered by sort order, then title.
func (s *Service) Pages() ([]Page, error) {
	if err := s.requireCollection(migrations.PagesCollection); err != nil {
		return nil, err
	}
	pages, err := loadAll[Page](s, migrations.PagesCollection)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].SortOrder != pages[j].SortOrder {
			return pages[i].SortOrder < pages[j].SortOrder
		}
		return pages[i].Title < pages[j].Title
	})
	return pages, nil
}

func (s *Service) DeletePost(id string) error {
	return s.delete(migrations.PostsCollection, id)
}

func (s *Service) DeletePage(id string) error {
	return s.delete(migrations.PagesCollection, id)
}

func (s *Service) delete(collection string, id string) error {
	if err := s.requireCollection(collection); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.store.Get(collection, id); err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return &RecordNotFoundError{Collection: collection, ID: id}
		}
		return err
	}
	if err := s.store.Delete(collection, id); err != nil {
		return err
	}
	s.logger.Info("deleted record", "collection", collection, "id", id)
	return nil
}

func (s *Service) validate(record any, body string) error {
	if err := s.validator.Validate(record); err != nil {
		return &InvalidRecordError{Err: err}
	}
	if err := s.shortcodes.Validate(body); err != nil {
		s.logger.Warn("content has invalid shortcodes", "err", err.Error())
		return &InvalidRecordError{Err: err}
	}
	return nil
}

func (s *Service) requireCollection(name string) error {
	if _, err := migrations.FindCollection(s.store, name); err != nil {
		if errors.Is(err, migrations.ErrCollectionNotFound) {
			s.logger.Error("collection has not been migrated", "collection", name)
			return fmt.Errorf("%w: %s", ErrCollectionNotMigrated, name)
		}
		return err
	}
	return nil
}

func (s *Service) put(collection string, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error("failed to marshal record", "collection", collection, "id", id, "err", err.Error())
		return fmt.Errorf("failed to marshal record %s: %w", id, err)
	}
	return s.store.Set(collection, id, string(data))
}

func loadAll[T any](s *Service, collection string) ([]T, error) {
	keys, err := s.store.GetAllKeys(collection)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(keys))
	for _, key := range keys {
		value, err := s.store.Get(collection, key)
		if err != nil {
			return nil, err
		}
		var record T
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			s.logger.Error("failed to unmarshal record", "collection", collection, "id", key, "err", err.Error())
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", key, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func window[T any](records []T, limit, offset int) []T {
	offset = max(offset, 0)
	if offset >= len(records) {
		return []T{}
	}
	end := len(records)
	if limit > 0 {
		end = min(end, offset+limit)
	}
	return records[offset:end]
}

func cleanTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}
