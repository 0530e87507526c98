package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sable-lang/sable/internal/infer"
)

const entrySuffix = ".sbc"

// DirStore persists one file per module under a root directory. Writes go
// through a uniquely named temp file and a rename, so a concurrent build or
// a crash can never leave a half-written entry at the final path.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// entryPath flattens module paths into single file names. Module names use
// `/` as the segment separator, which cannot appear in a file name.
func (s *DirStore) entryPath(module string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(module, "/", "@")+entrySuffix)
}

func (s *DirStore) Load(module string, fp Fingerprint) (*infer.TypedModule, bool) {
	data, err := os.ReadFile(s.entryPath(module))
	if err != nil {
		return nil, false
	}
	storedFp, typed, err := Decode(data)
	if err != nil || storedFp != fp {
		return nil, false
	}
	return typed, true
}

func (s *DirStore) Save(module string, fp Fingerprint, typed *infer.TypedModule) error {
	tmp := filepath.Join(s.dir, "tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, Encode(fp, typed), 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, s.entryPath(module)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit cache entry: %w", err)
	}
	return nil
}

// Clean removes every cache entry, leaving the directory in place.
func (s *DirStore) Clean() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entrySuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}
