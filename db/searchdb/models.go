package searchdb

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Document is one searchable entry of the corpus served at /search.json.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// UnmarshalJSON accepts ids encoded either as strings or as numbers.
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document(raw.plain)

	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		return fmt.Errorf("document %q has no id", raw.Title)
	}

	var id string
	if err := json.Unmarshal(raw.ID, &id); err == nil {
		d.ID = id
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(raw.ID, &number); err != nil {
		return fmt.Errorf("document id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseFloat(number.String(), 64); err != nil {
		return fmt.Errorf("document id must be a string or a number: %w", err)
	}
	d.ID = number.String()

	return nil
}

type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
