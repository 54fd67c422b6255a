package corpus

import (
	"errors"
	"fmt"
)

var ErrCorpusLoad = errors.New("corpus load failed")

// LoadError is returned when the corpus could not be fetched, decoded or indexed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load search corpus from %s: %s", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrCorpusLoad
}
