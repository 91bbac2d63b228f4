package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/plumeworks/plume/internal/document"
)

// DocumentStore persists publishing documents, one JSON file per document id.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates the store, making the directory when missing.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating %s: %w", dir, err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Dir returns the state directory backing the store.
func (s *DocumentStore) Dir() string {
	return s.dir
}

func (s *DocumentStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the document atomically.
func (s *DocumentStore) Save(doc *document.Document) error {
	if doc == nil {
		return fmt.Errorf("store: nil document")
	}
	if err := checkKey(doc.ID); err != nil {
		return err
	}
	return writeJSON(s.path(doc.ID), doc)
}

// Load reads a document by id. Missing documents return ErrNotFound.
func (s *DocumentStore) Load(id string) (*document.Document, error) {
	if err := checkKey(id); err != nil {
		return nil, err
	}
	var doc document.Document
	if err := readJSON(s.path(id), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes a document, reporting whether it existed.
func (s *DocumentStore) Delete(id string) (bool, error) {
	if err := checkKey(id); err != nil {
		return false, err
	}
	return remove(s.path(id))
}

// List returns every stored document id, sorted.
func (s *DocumentStore) List() ([]string, error) {
	return listKeys(s.dir)
}

// Summary is the row the CLI document table shows.
type Summary struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	PageName  string         `json:"page_name"`
	State     document.State `json:"state"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Summaries loads a summary row for every stored document, most recently
// updated first. Unreadable records are skipped.
func (s *DocumentStore) Summaries() ([]Summary, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Load(id)
		if err != nil {
			continue
		}
		summaries = append(summaries, Summary{
			ID:        doc.ID,
			Title:     doc.Title,
			PageName:  doc.PageName,
			State:     doc.State,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}
