// # Error Codes Reference
//
// This file maps technical errors to operator-facing messages with codes for
// support reference. The job service attaches the code and action to every
// error response so that an operator can quote the code when escalating.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Type coercion: A field could not be converted to its column type
//	        Patterns: "invalid input syntax", "out of range", "value too long"
//
//	DB002 - Foreign key: Referenced issuer or issue does not exist
//	        Patterns: "violates foreign key"
//
//	DB003 - Batch conflict: The same key appears twice in one batch
//	        Patterns: "cannot affect row a second time"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
//	DB007 - Missing relation: Target or staging table does not exist
//	        Patterns: "does not exist"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Directory not found: The configured file directory is missing
//	SRC002 - Source unavailable: Object storage could not be reached
//	SRC003 - Ambiguous files: More than one file matched a kind for the date
//	SRC004 - Invalid date: Business date is not YYYY-MM-DD
//
// # Load Errors (LOAD001-LOAD099)
//
//	LOAD001 - Field count: A record has the wrong number of fields
//	LOAD002 - Load in progress: Another load of the same kind is running
//	LOAD003 - Unknown kind: The file type is not configured
//	LOAD004 - Request cancelled
//	LOAD005 - Request timeout
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application log for
// the original error.
//
// Wrapped sentinel errors are matched with errors.Is before any text pattern,
// so a source failure whose cause mentions a network error keeps its SRC code.
// Text patterns are matched case-insensitively using strings.Contains. The
// first matching pattern wins, so more specific patterns come first.
package core

import (
	"context"
	"errors"
	"strings"
)

// UserMessage provides operator-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var (
	msgCoercion = UserMessage{
		Message: "A field could not be converted to its column type",
		Action:  "Check the file for malformed numeric or date values",
		Code:    "DB001",
	}
	msgDirectory = UserMessage{
		Message: "File directory not found",
		Action:  "Verify FILE_DIR points at the mounted extract directory",
		Code:    "SRC001",
	}
	msgUnavailable = UserMessage{
		Message: "File source is unavailable",
		Action:  "Check bucket name, credentials and network access, then retry",
		Code:    "SRC002",
	}
	msgAmbiguous = UserMessage{
		Message: "More than one file matched the same type for this date",
		Action:  "Remove the stale duplicate from the source and retry",
		Code:    "SRC003",
	}
	msgInvalidDate = UserMessage{
		Message: "Invalid business date",
		Action:  "Use YYYY-MM-DD",
		Code:    "SRC004",
	}
	msgFieldCount = UserMessage{
		Message: "A record has the wrong number of fields",
		Action:  "Verify the file layout matches the configured columns",
		Code:    "LOAD001",
	}
	msgInProgress = UserMessage{
		Message: "Another load of this file type is running",
		Action:  "Wait for the running load to finish and retry",
		Code:    "LOAD002",
	}
	msgUnknownKind = UserMessage{
		Message: "Unknown file type",
		Action:  "Use one of issuer, issue, issue_attr",
		Code:    "LOAD003",
	}
	msgCanceled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "LOAD004",
	}
	msgTimeout = UserMessage{
		Message: "Load timed out",
		Action:  "Raise LOAD_TIMEOUT or retry when the database is less busy",
		Code:    "LOAD005",
	}
)

// sentinelMessages is consulted with errors.Is before the text patterns.
var sentinelMessages = []sentinelMessage{
	{err: ErrDirectoryNotFound, msg: msgDirectory},
	{err: ErrSourceUnavailable, msg: msgUnavailable},
	{err: ErrAmbiguousFiles, msg: msgAmbiguous},
	{err: ErrInvalidDate, msg: msgInvalidDate},
	{err: ErrFieldCount, msg: msgFieldCount},
	{err: ErrLoadInProgress, msg: msgInProgress},
	{err: ErrUnknownFileKind, msg: msgUnknownKind},
	{err: context.Canceled, msg: msgCanceled},
	{err: context.DeadlineExceeded, msg: msgTimeout},
}

// errorPatterns maps technical error patterns (case-insensitive) to messages.
// Sentinel texts come first so a LoadResult error string, which has lost its
// wrap chain, maps the same way as the error it was built from.
var errorPatterns = []errorPattern{
	// Source
	{pattern: ErrDirectoryNotFound.Error(), msg: msgDirectory},
	{pattern: ErrSourceUnavailable.Error(), msg: msgUnavailable},
	{pattern: ErrAmbiguousFiles.Error(), msg: msgAmbiguous},
	{pattern: ErrInvalidDate.Error(), msg: msgInvalidDate},

	// Load
	{pattern: ErrFieldCount.Error(), msg: msgFieldCount},
	{pattern: ErrLoadInProgress.Error(), msg: msgInProgress},
	{pattern: ErrUnknownFileKind.Error(), msg: msgUnknownKind},

	// Database
	{pattern: "invalid input syntax", msg: msgCoercion},
	{pattern: "out of range", msg: msgCoercion},
	{pattern: "value too long", msg: msgCoercion},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced issuer or issue does not exist",
			Action:  "Load issuer, then issue, then issue attribute files",
			Code:    "DB002",
		},
	},
	{
		pattern: "cannot affect row a second time",
		msg: UserMessage{
			Message: "The same key appears more than once in one batch",
			Action:  "Inspect the file for duplicate identifiers",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},

	// Context
	{pattern: "context canceled", msg: msgCanceled},
	{pattern: "context deadline exceeded", msg: msgTimeout},

	// Generic; keep last.
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Target or staging table does not exist",
			Action:  "Apply the database migrations before loading",
			Code:    "DB007",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}
	return mapErrorText(err.Error())
}

// MapResultError maps the error text of a failed LoadResult.
func MapResultError(r LoadResult) UserMessage {
	if r.Status != StatusError || r.Error == "" {
		return UserMessage{}
	}
	return mapErrorText(r.Error)
}

func mapErrorText(text string) UserMessage {
	lower := strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}
