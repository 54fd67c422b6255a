package migrations

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/meghashyamc/sitesearch/db/kvdb"
)

var ErrCollectionNotFound = errors.New("collection not found")

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEditor   FieldType = "editor"
	FieldAutodate FieldType = "autodate"
	FieldFile     FieldType = "file"
	FieldNumber   FieldType = "number"
)

type Field struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Presentable bool      `json:"presentable,omitempty"`
	// only meaningful for autodate fields
	OnCreate bool `json:"on_create,omitempty"`
	OnUpdate bool `json:"on_update,omitempty"`
}

// Collection is the stored schema of a content bucket of the same name.
type Collection struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

func (c Collection) Field(name string) (Field, bool) {
	for _, field := range c.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FindCollection returns the schema a migration stored for name.
func FindCollection(store kvdb.DB, name string) (Collection, error) {
	raw, err := store.Get(kvdb.CollectionsBucket, name)
	if errors.Is(err, kvdb.ErrNotFound) {
		return Collection{}, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return Collection{}, err
	}

	var collection Collection
	if err := json.Unmarshal([]byte(raw), &collection); err != nil {
		return Collection{}, fmt.Errorf("could not decode collection %s: %w", name, err)
	}
	return collection, nil
}

func saveCollection(store kvdb.DB, collection Collection) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("could not encode collection %s: %w", collection.Name, err)
	}
	if err := store.CreateBucket(collection.Name); err != nil {
		return err
	}
	return store.Set(kvdb.CollectionsBucket, collection.Name, string(raw))
}

func deleteCollection(store kvdb.DB, name string) error {
	if err := store.DeleteBucket(name); err != nil && !errors.Is(err, kvdb.ErrBucketNotFound) {
		return err
	}
	return store.Delete(kvdb.CollectionsBucket, name)
}
