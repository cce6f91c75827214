package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// FileKind identifies one of the three PIP file layouts.
type FileKind string

const (
	KindIssuer         FileKind = "issuer"
	KindIssue          FileKind = "issue"
	KindIssueAttribute FileKind = "issue_attr"
)

// LoadOrder is the foreign-key order in which kinds must be applied:
// an issue references an issuer, an issue attribute references an issue.
var LoadOrder = []FileKind{KindIssuer, KindIssue, KindIssueAttribute}

// ParseFileKind converts a user-supplied name into a FileKind.
func ParseFileKind(s string) (FileKind, error) {
	switch FileKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIssuer:
		return KindIssuer, nil
	case KindIssue:
		return KindIssue, nil
	case KindIssueAttribute:
		return KindIssueAttribute, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFileKind, s)
}

// FileExtension is the extension every PIP file carries.
const FileExtension = ".PIP"

// KindFromFilename classifies a PIP file by the last letter before its
// extension: R is issuer, E is issue, A is issue attribute. Matching is
// case-insensitive. ok is false for any other name.
func KindFromFilename(name string) (kind FileKind, ok bool) {
	upper := strings.ToUpper(path.Base(name))
	if !strings.HasSuffix(upper, FileExtension) {
		return "", false
	}
	stem := strings.TrimSuffix(upper, FileExtension)
	if stem == "" {
		return "", false
	}
	switch stem[len(stem)-1] {
	case 'R':
		return KindIssuer, true
	case 'E':
		return KindIssue, true
	case 'A':
		return KindIssueAttribute, true
	}
	return "", false
}

// Status is the terminal outcome of one load.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// LoadResult is the outcome of loading one file. It is the unit returned to
// the job service and the CLI.
type LoadResult struct {
	File         string   `json:"file"`
	Type         FileKind `json:"type"`
	RowsRead     int      `json:"rows_read"`
	RowsUpserted int64    `json:"rows_upserted"`
	Status       Status   `json:"status"`
	Error        string   `json:"error,omitempty"`
}

// Succeeded reports whether a sequence of results contains no error.
// Skipped results count as success.
func Succeeded(results []LoadResult) bool {
	for _, r := range results {
		if r.Status == StatusError {
			return false
		}
	}
	return true
}

// SourceType discriminates where a FileLocation lives.
type SourceType string

const (
	SourceLocal SourceType = "local"
	SourceS3    SourceType = "s3"
)

// FileLocation is a discovered file. Path is set for local files,
// Bucket and Key for S3 objects.
type FileLocation struct {
	Name   string
	Source SourceType
	Path   string
	Bucket string
	Key    string
}

// DisplayPath returns the path used in logs and results.
func (l FileLocation) DisplayPath() string {
	switch {
	case l.Source == SourceLocal && l.Path != "":
		return l.Path
	case l.Source == SourceS3 && l.Bucket != "" && l.Key != "":
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Name
}

// FileSet holds the files discovered for one business date.
// A nil location means no file of that kind exists for the date.
type FileSet struct {
	Date           time.Time
	Issuer         *FileLocation
	Issue          *FileLocation
	IssueAttribute *FileLocation
}

// Get returns the location for kind, or nil.
func (fs FileSet) Get(kind FileKind) *FileLocation {
	switch kind {
	case KindIssuer:
		return fs.Issuer
	case KindIssue:
		return fs.Issue
	case KindIssueAttribute:
		return fs.IssueAttribute
	}
	return nil
}

// Set stores loc under kind. Unknown kinds are ignored.
func (fs *FileSet) Set(kind FileKind, loc *FileLocation) {
	switch kind {
	case KindIssuer:
		fs.Issuer = loc
	case KindIssue:
		fs.Issue = loc
	case KindIssueAttribute:
		fs.IssueAttribute = loc
	}
}

// FileSource discovers and reads PIP files.
// Implementations live in the source package.
type FileSource interface {
	FindFilesForDate(ctx context.Context, date time.Time) (FileSet, error)
	ReadFile(ctx context.Context, loc FileLocation) ([]string, error)
}

// Tx is the transaction surface the loader needs.
// Satisfied by the pgx-backed transaction returned from PgStore.Begin.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// CopyFrom streams text-format COPY data from r using the given
	// COPY ... FROM STDIN statement.
	CopyFrom(ctx context.Context, r io.Reader, sql string) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens load transactions. Every Tx it returns owns a pooled
// connection that is released by Commit or Rollback.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}
