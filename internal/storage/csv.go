package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sankalpiq/voice-agent/internal/models"
)

// CSVStore is the durable local registration log. The file is opened for
// append on every write and never held open between writes.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore creates a store writing to path
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Name() string { return "csv:" + s.path }

// Append writes rec as one row, writing the header first when the file is new or empty.
func (s *CSVStore) Append(ctx context.Context, rec models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	writeHeader := true
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		writeHeader = false
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if writeHeader {
		if err := w.Write(models.RecordHeader); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	return f.Close()
}

// ReadAll returns every row in the log including the header
func (s *CSVStore) ReadAll() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}
