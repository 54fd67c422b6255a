package content

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCollectionNotMigrated = errors.New("collection has not been migrated")
	ErrRecordNotFound        = errors.New("record not found")
	ErrInvalidRecord         = errors.New("invalid record")
)

// InvalidRecordError wraps the reason a record was rejected before saving.
type InvalidRecordError struct {
	Err error
}

func (e *InvalidRecordError) Error() string {
	return e.Err.Error()
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Err
}

func (e *InvalidRecordError) Is(target error) bool {
	return target == ErrInvalidRecord
}

type RecordNotFoundError struct {
	Collection string
	ID         string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("%s record not found: %s", e.Collection, e.ID)
}

func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"required"`
	Content       string    `json:"content" validate:"required"`
	Published     time.Time `json:"published"`
	Tags          []string  `json:"tags"`
	Slug          string    `json:"slug" validate:"valid_slug"`
	Excerpt       string    `json:"excerpt,omitempty"`
	FeaturedImage string    `json:"featured_image,omitempty"`
}

func (p Post) URL() string {
	return "/posts/" + p.Slug + "/"
}

type Page struct {
	ID        string `json:"id"`
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Slug      string `json:"slug" validate:"valid_slug"`
	SortOrder int    `json:"sort_order"`
}

func (p Page) URL() string {
	return "/" + p.Slug + "/"
}
