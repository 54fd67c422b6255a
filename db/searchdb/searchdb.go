package searchdb

type DB interface {
	BuildIndex(documents []Document) error
	Search(queryString string) ([]Result, error)
	GetDocCount() (uint64, error)
	Close() error
}
