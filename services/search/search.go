package search

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/meghashyamc/sitesearch/db/searchdb"
	"github.com/meghashyamc/sitesearch/logger"
)

// MinQueryLength is the number of characters a trimmed query needs before it is run.
const MinQueryLength = 3

// Index is the read side of the search index.
type Index interface {
	Search(queryString string) ([]searchdb.Result, error)
}

type Service struct {
	logger logger.Logger
	index  Index
}

func New(logger logger.Logger, index Index) *Service {
	return &Service{
		logger: logger,
		index:  index,
	}
}

// Search runs query against the index. Short queries and index failures
// yield an empty result set rather than an error.
func (s *Service) Search(query string) []searchdb.Result {
	query = strings.TrimSpace(query)
	if !IsRunnable(query) {
		s.logger.Debug("query too short, not searching", "query", query, "min_length", MinQueryLength)
		return []searchdb.Result{}
	}

	results, err := s.index.Search(query)
	if err != nil {
		if errors.Is(err, searchdb.ErrIndexNotBuilt) {
			s.logger.Warn("search index is not available, returning no results", "query", query)
		} else {
			s.logger.Error("search failed, returning no results", "query", query, "err", err.Error())
		}
		return []searchdb.Result{}
	}

	return results
}

// IsRunnable reports whether a query is long enough to be executed once trimmed.
func IsRunnable(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryLength
}
