// Package jsonstore is the default PersistentStore: one JSON file holding
// the serialized job map, matching the "one file holding the serialized job
// map" persistence layout.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/jaye773/summarizer-core/internal/job"
	"github.com/jaye773/summarizer-core/internal/logging"
)

// Store persists jobs to a single JSON file on disk.
type Store struct {
	path string
	log  logging.StandardLogger
}

// New returns a Store writing to path. The parent directory is created on
// first Save if missing.
func New(path string, log logging.StandardLogger) *Store {
	if log == nil {
		log = &logging.DiscardLogger{}
	}
	return &Store{path: path, log: log}
}

// record is the on-disk shape for one job. Unknown keys are ignored on load
// and are not written back by Save: Extra only captures a key literally
// named "extra", and Load does not carry it into the returned job.Job.
type record struct {
	job.Job
	Extra json.RawMessage `json:"extra,omitempty"`
}

// Load reads every record from disk, skipping and logging any that fail to
// parse rather than failing the whole load.
func (s *Store) Load() ([]*job.Job, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonstore: read %s: %w", s.path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("jsonstore: parse %s: %w", s.path, err)
	}

	var merr *multierror.Error
	jobs := make([]*job.Job, 0, len(records))
	for i, raw := range records {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			s.log.Warnw("dropping corrupt job record on load", "index", i, "err", err)
			merr = multierror.Append(merr, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if r.Job.ID == "" {
			s.log.Warnw("dropping partial job record on load (missing id)", "index", i)
			continue
		}
		j := r.Job
		jobs = append(jobs, &j)
	}
	if err := merr.ErrorOrNil(); err != nil {
		s.log.Warnw("jsonstore: dropped corrupt records on load", "count", len(merr.Errors), "err", err)
	}
	return jobs, nil
}

// Save atomically overwrites the file with the full job map.
func (s *Store) Save(jobs []*job.Job) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("jsonstore: mkdir: %w", err)
	}

	records := make([]record, 0, len(jobs))
	for _, j := range jobs {
		records = append(records, record{Job: *j})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonstore: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonstore: rename into place: %w", err)
	}
	return nil
}
