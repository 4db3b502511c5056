package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/basir/internal/model"
)

// FinalArtifact is the file holding the most recent aggregated response
const FinalArtifact = "final_crew_results.json"

// ArtifactStore writes task outputs under one directory. Every write
// replaces the previous file atomically.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the output directory
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// WriteTask stores one task's raw output
func (s *ArtifactStore) WriteTask(name string, data []byte) error {
	return writeAtomic(filepath.Join(s.dir, name), data)
}

// WriteFinal stores the aggregated response as indented JSON
func (s *ArtifactStore) WriteFinal(agg *model.AggregatedResponse) error {
	data, err := json.MarshalIndent(agg, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal aggregated response: %w", err)
	}
	return writeAtomic(filepath.Join(s.dir, FinalArtifact), data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
