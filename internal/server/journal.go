// journal.go — Append-only NDJSON log of applied messages.
// A journal file is exactly the input `dakka export` replays.
package server

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ozdemirkulaoglu/dakka/internal/ingest"
	"github.com/ozdemirkulaoglu/dakka/internal/state"
)

// Journal appends messages to a file, one JSON object per line.
type Journal struct {
	mu   sync.Mutex
	path string
}

// OpenJournal prepares path for appending, creating its directory.
func OpenJournal(path string) (*Journal, error) {
	if err := state.EnsureParent(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path set at startup
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	_ = f.Close()
	return &Journal{path: path}, nil
}

// Path returns the journal file.
func (j *Journal) Path() string { return j.path }

// Append writes m as one line.
func (j *Journal) Append(m ingest.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path set at startup
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // deferred close
	_, err = f.Write(data)
	return err
}
