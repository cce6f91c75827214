package core

import (
	"errors"
	"testing"
	"time"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name   string
		want   FileKind
		wantOK bool
	}{
		{"CED01-15R.PIP", KindIssuer, true},
		{"CED01-15E.PIP", KindIssue, true},
		{"CED01-15A.PIP", KindIssueAttribute, true},
		{"ced01-15r.pip", KindIssuer, true},
		{"/data/pif_files/CED12-31E.PIP", KindIssue, true},
		{"pip/CED12-31A.pip", KindIssueAttribute, true},
		{"CED01-15X.PIP", "", false},
		{"CED01-15R.TXT", "", false},
		{".PIP", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KindFromFilename(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("KindFromFilename(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseFileKind(t *testing.T) {
	for _, s := range []string{"issuer", "ISSUE", " issue_attr "} {
		if _, err := ParseFileKind(s); err != nil {
			t.Errorf("ParseFileKind(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFileKind("issue_attribute"); !errors.Is(err, ErrUnknownFileKind) {
		t.Errorf("ParseFileKind(issue_attribute) error = %v, want ErrUnknownFileKind", err)
	}
}

func TestFileLocation_DisplayPath(t *testing.T) {
	tests := []struct {
		name string
		loc  FileLocation
		want string
	}{
		{
			name: "local",
			loc:  FileLocation{Name: "CED01-15R.PIP", Source: SourceLocal, Path: "/data/CED01-15R.PIP"},
			want: "/data/CED01-15R.PIP",
		},
		{
			name: "s3",
			loc:  FileLocation{Name: "CED01-15R.PIP", Source: SourceS3, Bucket: "refdata", Key: "pip/CED01-15R.PIP"},
			want: "s3://refdata/pip/CED01-15R.PIP",
		},
		{
			name: "incomplete falls back to name",
			loc:  FileLocation{Name: "CED01-15R.PIP", Source: SourceS3, Bucket: "refdata"},
			want: "CED01-15R.PIP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.DisplayPath(); got != tt.want {
				t.Errorf("DisplayPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileSet_GetSet(t *testing.T) {
	fs := FileSet{Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
	loc := &FileLocation{Name: "CED01-15E.PIP"}

	fs.Set(KindIssue, loc)
	if fs.Get(KindIssue) != loc {
		t.Error("Get(issue) did not return stored location")
	}
	if fs.Get(KindIssuer) != nil || fs.Get(KindIssueAttribute) != nil {
		t.Error("unset kinds should be nil")
	}
	if fs.Get(FileKind("bogus")) != nil {
		t.Error("unknown kind should be nil")
	}
}

func TestSucceeded(t *testing.T) {
	tests := []struct {
		name    string
		results []LoadResult
		want    bool
	}{
		{"empty", nil, true},
		{"all success", []LoadResult{{Status: StatusSuccess}, {Status: StatusSuccess}}, true},
		{"skipped counts as success", []LoadResult{{Status: StatusSuccess}, {Status: StatusSkipped}}, true},
		{"any error fails", []LoadResult{{Status: StatusSuccess}, {Status: StatusError}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Succeeded(tt.results); got != tt.want {
				t.Errorf("Succeeded() = %v, want %v", got, tt.want)
			}
		})
	}
}
