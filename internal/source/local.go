package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/cusip/internal/core"
)

// Local finds PIP files in a directory on the local filesystem.
type Local struct {
	dir    string
	prefix string
}

// NewLocal creates a Local source over dir. An empty prefix means CED.
func NewLocal(dir, prefix string) *Local {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Local{dir: dir, prefix: prefix}
}

// Dir returns the scanned directory.
func (l *Local) Dir() string {
	return l.dir
}

// FindFilesForDate lists the directory and classifies the files for date.
// Name matching is case-insensitive.
func (l *Local) FindFilesForDate(ctx context.Context, date time.Time) (core.FileSet, error) {
	if err := ctx.Err(); err != nil {
		return core.FileSet{}, err
	}

	info, err := os.Stat(l.dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return core.FileSet{}, fmt.Errorf("%w: %s", core.ErrDirectoryNotFound, l.dir)
	}
	if err != nil {
		return core.FileSet{}, fmt.Errorf("%w: stat %s: %v", core.ErrSourceUnavailable, l.dir, err)
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return core.FileSet{}, fmt.Errorf("%w: read directory %s: %v", core.ErrSourceUnavailable, l.dir, err)
	}

	pattern := datePattern(l.prefix, date)
	var candidates []core.FileLocation
	for _, e := range entries {
		if e.IsDir() || !matchesDate(e.Name(), pattern) {
			continue
		}
		candidates = append(candidates, LocalFile(filepath.Join(l.dir, e.Name())))
	}

	return classify(date, candidates)
}

// ReadFile reads and decodes the file at loc.Path.
func (l *Local) ReadFile(ctx context.Context, loc core.FileLocation) ([]string, error) {
	if loc.Path == "" {
		return nil, fmt.Errorf("no local path for file %q", loc.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(loc.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeLines(f)
}
