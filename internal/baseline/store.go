// Package baseline persists the reference records that later verifications
// compare against.
package baseline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/renameio/v2"

	vaerrors "github.com/five82/vidauth/internal/errors"
	"github.com/five82/vidauth/internal/metadata"
	"github.com/five82/vidauth/internal/videoid"
)

// Record is the reference captured for one video ID. Only Hash, Metadata
// and Watermark take part in verification; the remaining fields describe
// where the record came from.
type Record struct {
	Hash            string          `json:"hash"`
	HashAlgorithm   string          `json:"hash_algorithm,omitempty"`
	Metadata        metadata.Record `json:"metadata"`
	Watermark       string          `json:"watermark"`
	Source          string          `json:"source,omitempty"`
	WatermarkedPath string          `json:"watermarked_path,omitempty"`
	StoredAt        *time.Time      `json:"stored_at,omitempty"`
}

// Store is an in-memory copy of the baseline document. Changes are only
// persisted by Save, which replaces the whole file.
type Store struct {
	path      string
	records   map[videoid.ID]Record
	recovered error
}

// New returns an empty store that will be saved to path.
func New(path string) *Store {
	return &Store{path: path, records: make(map[videoid.ID]Record)}
}

// Load reads the store at path. A missing file yields an empty store. An
// empty or undecodable file also yields an empty store; the decode failure
// is logged as a warning and kept in Recovered.
func Load(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := New(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("baseline store not found, starting empty", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, vaerrors.NewIOError("failed to read baseline store", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		s.recovered = vaerrors.NewCorruptStoreError(path, errors.New("file is empty"))
	} else if err := json.Unmarshal(data, &s.records); err != nil {
		s.records = make(map[videoid.ID]Record)
		s.recovered = vaerrors.NewCorruptStoreError(path, err)
	} else if s.records == nil {
		s.records = make(map[videoid.ID]Record)
	}

	if s.recovered != nil {
		logger.Warn("baseline store reset", "path", path, "error", s.recovered)
	}
	return s, nil
}

// Path returns the file the store is saved to.
func (s *Store) Path() string {
	return s.path
}

// Recovered returns the CorruptStore error encountered by Load, if any.
func (s *Store) Recovered() error {
	return s.recovered
}

// Get returns the record for id, or a NoBaseline error.
func (s *Store) Get(id videoid.ID) (Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return Record{}, vaerrors.NewNoBaselineError(id.String())
	}
	return rec, nil
}

// Put stores rec under id, replacing any previous record wholesale.
func (s *Store) Put(id videoid.ID, rec Record) {
	s.records[id] = rec
}

// Commit puts rec under id and saves the store. If Save fails the store
// is left as it was before the call.
func (s *Store) Commit(id videoid.ID, rec Record) error {
	prev, had := s.records[id]
	s.Put(id, rec)
	if err := s.Save(); err != nil {
		if had {
			s.records[id] = prev
		} else {
			delete(s.records, id)
		}
		return err
	}
	return nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// IDs returns the stored IDs in sorted order.
func (s *Store) IDs() []videoid.ID {
	ids := make([]videoid.ID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Save writes the store to its path as a 4-space indented JSON document.
// The file is replaced atomically so readers never see a partial store.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return vaerrors.NewIOError("failed to encode baseline store", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return vaerrors.NewIOError("failed to create baseline store directory", err)
		}
	}

	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return vaerrors.NewIOError("failed to write baseline store", err)
	}
	return nil
}
