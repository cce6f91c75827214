package core

import (
	"context"
	"fmt"
)

// DateLayout is the business date format used in requests and file discovery.
const DateLayout = "2006-01-02"

// LoadAll loads every kind in LoadOrder from files. It stops after the first
// result with StatusError; later kinds get no result at all. A kind with no
// file is skipped and the sequence continues.
func (l *Loader) LoadAll(ctx context.Context, files FileSet, src FileSource) []LoadResult {
	results := make([]LoadResult, 0, len(LoadOrder))
	for _, kind := range LoadOrder {
		r := l.LoadOne(ctx, kind, files, src)
		results = append(results, r)
		if stopsSequence(r) {
			l.logger.Warn("load sequence stopped",
				"kind", string(kind),
				"error", r.Error,
				"remaining", len(LoadOrder)-len(results),
			)
			break
		}
	}
	return results
}

func stopsSequence(r LoadResult) bool {
	return r.Status == StatusError
}

// LoadOne loads the file of one kind from files. An absent file yields a
// skipped result naming the kind and date.
func (l *Loader) LoadOne(ctx context.Context, kind FileKind, files FileSet, src FileSource) LoadResult {
	loc := files.Get(kind)
	if loc == nil {
		return LoadResult{
			Type:   kind,
			Status: StatusSkipped,
			Error:  fmt.Sprintf("no %s file found for date %s", kind, files.Date.Format(DateLayout)),
		}
	}
	return l.LoadLocation(ctx, kind, *loc, src)
}

// LoadLocation reads loc from src and loads it as kind. Read failures and
// unknown kinds become error results.
func (l *Loader) LoadLocation(ctx context.Context, kind FileKind, loc FileLocation, src FileSource) LoadResult {
	name := loc.DisplayPath()
	l.logger.Info("reading file", "kind", string(kind), "file", name, "source", string(loc.Source))

	lines, err := src.ReadFile(ctx, loc)
	if err != nil {
		l.logger.Error("read failed", "kind", string(kind), "file", name, "error", err)
		return LoadResult{
			File:   name,
			Type:   kind,
			Status: StatusError,
			Error:  fmt.Sprintf("read %s: %v", name, err),
		}
	}

	result, err := l.Load(ctx, kind, lines, name)
	if err != nil {
		return LoadResult{File: name, Type: kind, Status: StatusError, Error: err.Error()}
	}
	return result
}
