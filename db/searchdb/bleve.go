package searchdb

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/sitesearch/logger"
)

const IndexingBatchSize = 100

// bleve refuses fuzzy queries with a larger edit distance.
const maxFuzzyEdits = 2

const (
	indexFieldTitle = "title"
	indexFieldText  = "text"
)

const (
	DefaultTitleBoost = 2.0
	DefaultTextBoost  = 1.0
	DefaultFuzziness  = 0.2
)

var ErrIndexNotBuilt = errors.New("search index has not been built")

type Options struct {
	TitleBoost float64
	TextBoost  float64
	// Fuzziness is the share of a term's characters that may differ in a fuzzy match.
	Fuzziness float64
}

func DefaultOptions() Options {
	return Options{
		TitleBoost: DefaultTitleBoost,
		TextBoost:  DefaultTextBoost,
		Fuzziness:  DefaultFuzziness,
	}
}

// BleveDB is an in-memory full-text index over the title and text of a corpus.
type BleveDB struct {
	logger  logger.Logger
	options Options

	mu sync.RWMutex
	// nil until BuildIndex succeeds
	index bleve.Index
	// build position of every document, used to break score ties
	positions map[string]int
}

func New(logger logger.Logger, options Options) *BleveDB {
	if options.TitleBoost <= 0 {
		options.TitleBoost = DefaultTitleBoost
	}
	if options.TextBoost <= 0 {
		options.TextBoost = DefaultTextBoost
	}
	if options.Fuzziness < 0 {
		options.Fuzziness = 0
	}
	return &BleveDB{logger: logger, options: options}
}

// BuildIndex indexes documents into a fresh in-memory index. The previous
// index, if any, stays in place when the build fails.
func (b *BleveDB) BuildIndex(documents []Document) error {

	index, err := bleve.NewMemOnly(createIndexMapping())
	if err != nil {
		b.logger.Error("could not create in-memory index", "err", err.Error())
		return fmt.Errorf("could not create in-memory index: %w", err)
	}

	positions := make(map[string]int, len(documents))
	batch := index.NewBatch()

	for i, doc := range documents {
		if _, duplicate := positions[doc.ID]; duplicate {
			b.logger.Warn("skipping document with duplicate id", "id", doc.ID)
			continue
		}
		positions[doc.ID] = i

		err := batch.Index(doc.ID, map[string]interface{}{
			indexFieldTitle: doc.Title,
			indexFieldText:  doc.Text,
		})
		if err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			index.Close()
			return err
		}

		// Execute batch when it reaches the batch size
		if (i+1)%IndexingBatchSize == 0 {
			if err := index.Batch(batch); err != nil {
				b.logger.Error("could not index batch of documents", "err", err.Error())
				index.Close()
				return err
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			b.logger.Error("could not index batch of documents", "err", err.Error())
			index.Close()
			return err
		}
	}

	b.mu.Lock()
	previous := b.index
	b.index = index
	b.positions = positions
	b.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			b.logger.Warn("could not close replaced search index", "err", err.Error())
		}
	}

	b.logger.Info("built search index", "documents", len(positions))
	return nil
}

func createIndexMapping() mapping.IndexMapping {

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()
	// Only title and text are searchable; the corpus itself is kept by the caller.
	docMapping.Dynamic = false

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldTitle, titleFieldMapping)

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(indexFieldText, textFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// Search returns every document matching at least one query term, best first.
func (b *BleveDB) Search(queryString string) ([]Result, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.index == nil {
		return nil, ErrIndexNotBuilt
	}

	docCount, err := b.index.DocCount()
	if err != nil {
		b.logger.Error("could not count indexed documents", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if docCount == 0 {
		return []Result{}, nil
	}

	terms, err := b.analyze(queryString)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return []Result{}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(b.buildSearchQuery(terms), int(docCount), 0, false)
	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		results = append(results, Result{ID: hit.ID, Score: hit.Score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return b.positions[results[i].ID] < b.positions[results[j].ID]
	})

	return results, nil
}

// analyze runs the query through the same analyzer the fields are indexed with.
func (b *BleveDB) analyze(queryString string) ([]string, error) {
	analyzer := b.index.Mapping().AnalyzerNamed(standard.Name)
	if analyzer == nil {
		b.logger.Error("could not find query analyzer", "analyzer", standard.Name)
		return nil, fmt.Errorf("could not find analyzer %s", standard.Name)
	}
	tokens := analyzer.Analyze([]byte(queryString))

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		term := string(token.Term)
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms, nil
}

func (b *BleveDB) buildSearchQuery(terms []string) query.Query {

	const (
		weightForExactMatch  = 1.0
		weightForPrefixMatch = 0.375
		weightForFuzzyMatch  = 0.45
	)

	fieldBoosts := []struct {
		field string
		boost float64
	}{
		{field: indexFieldTitle, boost: b.options.TitleBoost},
		{field: indexFieldText, boost: b.options.TextBoost},
	}

	disjunctQuery := bleve.NewDisjunctionQuery()

	for _, term := range terms {
		edits := fuzzyEdits(term, b.options.Fuzziness)

		for _, fb := range fieldBoosts {
			exactQuery := bleve.NewTermQuery(term)
			exactQuery.SetField(fb.field)
			exactQuery.SetBoost(fb.boost * weightForExactMatch)
			disjunctQuery.AddQuery(exactQuery)

			prefixQuery := bleve.NewPrefixQuery(term)
			prefixQuery.SetField(fb.field)
			prefixQuery.SetBoost(fb.boost * weightForPrefixMatch)
			disjunctQuery.AddQuery(prefixQuery)

			if edits > 0 {
				fuzzyQuery := bleve.NewFuzzyQuery(term)
				fuzzyQuery.SetField(fb.field)
				fuzzyQuery.SetFuzziness(edits)
				fuzzyQuery.SetBoost(fb.boost * weightForFuzzyMatch)
				disjunctQuery.AddQuery(fuzzyQuery)
			}
		}
	}

	return disjunctQuery
}

// fuzzyEdits is the edit distance tolerated for term: its length times
// fuzziness, rounded, never above what bleve supports.
func fuzzyEdits(term string, fuzziness float64) int {
	edits := int(math.Round(float64(utf8.RuneCountInString(term)) * fuzziness))
	return max(0, min(edits, maxFuzzyEdits))
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.index == nil {
		return 0, nil
	}
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
		b.index = nil
	}
	return nil
}
