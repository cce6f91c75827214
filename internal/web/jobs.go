package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/cusip/internal/core"
	"github.com/JonMunkholm/cusip/internal/logging"
	"github.com/JonMunkholm/cusip/internal/source"
)

// maxBodySize bounds a LoadRequest body.
const maxBodySize = 4 << 10

// LoadRequest is the optional body of every job. An empty body or empty
// date means today.
type LoadRequest struct {
	Date string `json:"date"`
}

// LoadResponse is the body of a completed job, successful or not.
type LoadResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Results []JobResult `json:"results"`
	Date    string      `json:"date"`
}

// JobResult is a LoadResult as reported to the caller. Failed results carry
// the catalogue code and action for their error.
type JobResult struct {
	core.LoadResult
	Code   string `json:"code,omitempty"`
	Action string `json:"action,omitempty"`
}

func jobResults(results []core.LoadResult) []JobResult {
	out := make([]JobResult, len(results))
	for i, r := range results {
		msg := core.MapResultError(r)
		out[i] = JobResult{LoadResult: r, Code: msg.Code, Action: msg.Action}
	}
	return out
}

// jobLabels names each kind in response messages.
var jobLabels = map[core.FileKind]string{
	core.KindIssuer:         "Issuer load",
	core.KindIssue:          "Issue load",
	core.KindIssueAttribute: "Issue attributes load",
}

func (s *Server) handleLoadKind(kind core.FileKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.runJob(w, r, []core.FileKind{kind}, func(ctx context.Context, files core.FileSet) LoadResponse {
			result := s.deps.Loader.LoadOne(ctx, kind, files, s.deps.Source)
			results := []core.LoadResult{result}

			success := core.Succeeded(results)
			outcome := "completed"
			if !success {
				outcome = "failed"
			}
			return LoadResponse{
				Success: success,
				Message: jobLabels[kind] + " " + outcome,
				Results: jobResults(results),
			}
		})
	}
}

func (s *Server) handleLoadAll(w http.ResponseWriter, r *http.Request) {
	s.runJob(w, r, core.LoadOrder, func(ctx context.Context, files core.FileSet) LoadResponse {
		results := s.deps.Loader.LoadAll(ctx, files, s.deps.Source)

		success := core.Succeeded(results)
		message := "All files loaded successfully"
		if !success {
			message = "Load failed - check results for details"
		}
		return LoadResponse{
			Success: success,
			Message: message,
			Results: jobResults(results),
		}
	})
}

// runJob resolves the business date, holds the gate for kinds, discovers the
// day's files and hands them to load. Discovery and gating failures become
// error responses; load outcomes, failed or not, are reported with 200.
func (s *Server) runJob(w http.ResponseWriter, r *http.Request, kinds []core.FileKind,
	load func(ctx context.Context, files core.FileSet) LoadResponse) {

	date, err := s.requestDate(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// The load outlives a disconnected client so that it commits or rolls
	// back on its own terms; the timeout still bounds it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.Load.Timeout)
	defer cancel()

	logger := logging.WithFields(ctx, "job", r.URL.Path, "date", date.Format(core.DateLayout))

	if err := s.deps.Gate.Acquire(ctx, kinds...); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.deps.Gate.Release(kinds...)

	files, err := s.deps.Source.FindFilesForDate(ctx, date)
	if err != nil {
		respondError(w, r, fmt.Errorf("find files for %s: %w", date.Format(core.DateLayout), err))
		return
	}

	logger.Info("job started")
	start := time.Now()

	resp := load(ctx, files)
	resp.Date = date.Format(core.DateLayout)

	logger.Info("job finished",
		"success", resp.Success,
		"files", len(resp.Results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, resp)
}

// requestDate reads the optional LoadRequest body.
func (s *Server) requestDate(r *http.Request) (time.Time, error) {
	var req LoadRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return time.Time{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	if req.Date == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return source.ParseDate(req.Date)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.deps.Gate.Status())
}
