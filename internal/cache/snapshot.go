package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/autoledger/autoledger/internal/common"
	"github.com/autoledger/autoledger/internal/model"
)

// snapshotVersion guards against reading snapshots written by an
// incompatible schema.
const snapshotVersion = 1

var tenantFileRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// snapshotFile is the on-disk envelope for one tenant's patterns.
type snapshotFile struct {
	WrittenAt time.Time       `json:"written_at"`
	Patterns  []model.Pattern `json:"patterns"`
	Version   int             `json:"version"`
}

// Snapshot persists per-tenant pattern sets as JSON files so the cache
// survives process restarts.
type Snapshot struct {
	dir string
}

// NewSnapshot creates a snapshot tier rooted at dir.
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

// Load reads a tenant's snapshot. A missing file returns (nil, nil); an
// unreadable or malformed file returns common.ErrSnapshotCorrupted so
// the caller treats it as a miss.
func (s *Snapshot) Load(tenant string) ([]model.Pattern, error) {
	data, err := os.ReadFile(s.path(tenant))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSnapshotCorrupted, err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSnapshotCorrupted, err)
	}
	if file.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", common.ErrSnapshotCorrupted, file.Version)
	}

	if file.Patterns == nil {
		file.Patterns = []model.Pattern{}
	}
	return file.Patterns, nil
}

// Store writes a tenant's snapshot atomically (write temp, then rename).
func (s *Snapshot) Store(tenant string, patterns []model.Pattern) error {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.Marshal(snapshotFile{
		Version:   snapshotVersion,
		WrittenAt: time.Now().UTC(),
		Patterns:  patterns,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path(tenant)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	return nil
}

// Remove deletes a tenant's snapshot file, if present.
func (s *Snapshot) Remove(tenant string) error {
	err := os.Remove(s.path(tenant))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

func (s *Snapshot) path(tenant string) string {
	safe := tenantFileRe.ReplaceAllString(tenant, "_")
	return filepath.Join(s.dir, safe+".json")
}
