// Package source discovers and reads PIP files from a local directory or an
// S3 bucket.
package source

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/cusip/internal/config"
	"github.com/JonMunkholm/cusip/internal/core"
)

// DefaultPrefix is the fixed name prefix of every PIP file.
const DefaultPrefix = "CED"

// New builds the file source selected by cfg. awsRegion is the fallback
// region when cfg.S3Region is empty.
func New(cfg config.SourceConfig, awsRegion string) (core.FileSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Type) {
	case config.SourceLocal:
		return NewLocal(cfg.Dir, cfg.Prefix), nil
	case config.SourceS3:
		return NewS3(cfg, awsRegion)
	}
	return nil, fmt.Errorf("unknown file source type: %q", cfg.Type)
}

// ParseDate parses a YYYY-MM-DD business date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(core.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, want YYYY-MM-DD", core.ErrInvalidDate, s)
	}
	return d, nil
}

// datePattern returns the upper-cased name prefix for date: <PREFIX><MM>-<DD>.
func datePattern(prefix string, date time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return strings.ToUpper(prefix) + date.Format("01-02")
}

// matchesDate reports whether name is a PIP file for the date pattern.
func matchesDate(name, pattern string) bool {
	upper := strings.ToUpper(name)
	return strings.HasPrefix(upper, pattern) && strings.HasSuffix(upper, core.FileExtension)
}

// classify groups candidate locations by kind. More than one candidate for a
// kind is an error naming every candidate.
func classify(date time.Time, candidates []core.FileLocation) (core.FileSet, error) {
	files := core.FileSet{Date: date}
	byKind := make(map[core.FileKind][]core.FileLocation)

	for _, loc := range candidates {
		kind, ok := core.KindFromFilename(loc.Name)
		if !ok {
			continue
		}
		byKind[kind] = append(byKind[kind], loc)
	}

	for _, kind := range core.LoadOrder {
		locs := byKind[kind]
		switch len(locs) {
		case 0:
		case 1:
			loc := locs[0]
			files.Set(kind, &loc)
		default:
			names := make([]string, len(locs))
			for i, l := range locs {
				names[i] = l.DisplayPath()
			}
			sort.Strings(names)
			return core.FileSet{}, fmt.Errorf("%w: %d %s files for %s: %s",
				core.ErrAmbiguousFiles, len(locs), kind, date.Format(core.DateLayout), strings.Join(names, ", "))
		}
	}

	return files, nil
}

// decodeLines reads r as UTF-8, dropping a leading byte order mark and
// replacing invalid bytes with U+FFFD, and splits the text into lines.
func decodeLines(r io.Reader) ([]string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return nil, err
	}
	return splitLines(string(data)), nil
}

// splitLines splits on \n, \r\n and \r. A final terminator does not produce
// a trailing empty line.
func splitLines(s string) []string {
	lines := make([]string, 0, strings.Count(s, "\n")+1)
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return lines
}

// LocalFile describes an explicit local path.
func LocalFile(p string) core.FileLocation {
	return core.FileLocation{Name: path.Base(p), Source: core.SourceLocal, Path: p}
}

// S3Object describes an explicit S3 object.
func S3Object(bucket, key string) core.FileLocation {
	return core.FileLocation{Name: path.Base(key), Source: core.SourceS3, Bucket: bucket, Key: key}
}

var _ core.FileSource = (*Local)(nil)
var _ core.FileSource = (*S3)(nil)
