package kvdb

const (
	RequestsBucket    = "requests"
	PreferencesBucket = "preferences"
	MigrationsBucket  = "_migrations"
	CollectionsBucket = "_collections"
)

var systemBuckets = []string{RequestsBucket, PreferencesBucket, MigrationsBucket, CollectionsBucket}

type DB interface {
	CreateBucket(bucket string) error
	DeleteBucket(bucket string) error
	BucketExists(bucket string) (bool, error)
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	Close() error
}
