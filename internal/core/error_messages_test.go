package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "numeric coercion maps correctly",
			err:         errors.New(`ERROR: invalid input syntax for type numeric: "N/A" (SQLSTATE 22P02)`),
			wantCode:    "DB001",
			wantMessage: "A field could not be converted to its column type",
		},
		{
			name:        "foreign key maps correctly",
			err:         errors.New(`insert or update on table "issue" violates foreign key constraint "issue_issuer_num_fkey"`),
			wantCode:    "DB002",
			wantMessage: "Referenced issuer or issue does not exist",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "wrapped directory sentinel",
			err:         fmt.Errorf("find files: %w: /data/pif_files", ErrDirectoryNotFound),
			wantCode:    "SRC001",
			wantMessage: "File directory not found",
		},
		{
			name:        "wrapped source sentinel",
			err:         fmt.Errorf("%w: list s3://b/pip/: AccessDenied", ErrSourceUnavailable),
			wantCode:    "SRC002",
			wantMessage: "File source is unavailable",
		},
		{
			name:        "source outage mentioning connection refused",
			err:         fmt.Errorf("find files for 2026-01-15: %w: list s3://b/pip/: dial tcp 10.0.0.5:9000: connect: connection refused", ErrSourceUnavailable),
			wantCode:    "SRC002",
			wantMessage: "File source is unavailable",
		},
		{
			name:        "load in progress wrapping a deadline",
			err:         fmt.Errorf("acquire issuer: %w: %w", ErrLoadInProgress, context.DeadlineExceeded),
			wantCode:    "LOAD002",
			wantMessage: "Another load of this file type is running",
		},
		{
			name:        "field count",
			err:         fmt.Errorf("line 3: %w: got 4 fields, want 16", ErrFieldCount),
			wantCode:    "LOAD001",
			wantMessage: "A record has the wrong number of fields",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "LOAD005",
			wantMessage: "Load timed out",
		},
		{
			name:        "missing table",
			err:         errors.New(`relation "stg_issuer" does not exist`),
			wantCode:    "DB007",
			wantMessage: "Target or staging table does not exist",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DEADLOCK detected"),
			wantCode:    "DB006",
			wantMessage: "Database was busy with conflicting operations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapResultError(t *testing.T) {
	ok := LoadResult{Status: StatusSuccess}
	if got := MapResultError(ok); got.Code != "" {
		t.Errorf("MapResultError(success) code = %q, want empty", got.Code)
	}

	failed := LoadResult{Status: StatusError, Error: "ERROR: value too long for type character varying(6)"}
	if got := MapResultError(failed); got.Code != "DB001" {
		t.Errorf("MapResultError() code = %q, want DB001", got.Code)
	}

	unreachable := LoadResult{
		Status: StatusError,
		Error:  "read s3://b/pip/CED01-15R.PIP: file source unavailable: dial tcp: connection reset by peer",
	}
	if got := MapResultError(unreachable); got.Code != "SRC002" {
		t.Errorf("MapResultError(source outage) code = %q, want SRC002", got.Code)
	}
}
