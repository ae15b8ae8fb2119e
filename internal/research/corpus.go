// ABOUTME: In-memory record corpus backing the research search/fetch tools.
// ABOUTME: Search is case-insensitive any-token substring matching; Fetch looks up by id.

package research

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound indicates an unknown record id.
var ErrNotFound = errors.New("record not found")

// Record is one searchable document.
type Record struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// haystack returns the lowercased fields searched by Search.
func (r *Record) haystack() []string {
	fields := make([]string, 0, 2+len(r.Metadata))
	fields = append(fields, strings.ToLower(r.Title), strings.ToLower(r.Text))
	for _, v := range r.Metadata {
		fields = append(fields, strings.ToLower(fmt.Sprint(v)))
	}
	return fields
}

// Corpus is an immutable set of records.
type Corpus struct {
	records []*Record
	byID    map[string]*Record
}

// NewCorpus indexes records. Later duplicates of an id shadow earlier
// ones for Fetch but both remain searchable.
func NewCorpus(records []Record) *Corpus {
	c := &Corpus{byID: make(map[string]*Record, len(records))}
	for i := range records {
		rec := &records[i]
		c.records = append(c.records, rec)
		c.byID[rec.ID] = rec
	}
	return c
}

// Load reads a JSON array of records from path.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("records %s must be a JSON list of objects: %w", path, err)
	}
	return NewCorpus(records), nil
}

// Len returns the number of records.
func (c *Corpus) Len() int { return len(c.records) }

// Search returns, in corpus order, the ids of records whose title, text
// or metadata values contain any whitespace-separated token of query.
// The result is never nil.
func (c *Corpus) Search(query string) []string {
	tokens := strings.Fields(strings.ToLower(query))
	ids := []string{}
	if len(tokens) == 0 {
		return ids
	}
	for _, rec := range c.records {
		if matchesAny(rec.haystack(), tokens) {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// Fetch returns the record with id.
func (c *Corpus) Fetch(id string) (Record, error) {
	rec, ok := c.byID[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: unknown record ID: %s", ErrNotFound, id)
	}
	return *rec, nil
}

func matchesAny(fields, tokens []string) bool {
	for _, f := range fields {
		for _, tok := range tokens {
			if strings.Contains(f, tok) {
				return true
			}
		}
	}
	return false
}
