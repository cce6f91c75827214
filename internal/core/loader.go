package core

// loader.go implements the staging-and-upsert load of one file.
//
// A load runs in a single transaction:
//
//	TRUNCATE staging → COPY records into staging → INSERT ... ON CONFLICT into target → COMMIT
//
// Staging rows left by a previous run never leak into a later upsert because
// the truncate happens inside the same transaction as the copy.

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FieldDelimiter separates fields in every PIP record.
const FieldDelimiter = '|'

// Loader applies PIP files to the relational store.
// It is safe for concurrent use; serialization per kind is the caller's job
// (see Gate).
type Loader struct {
	registry *Registry
	db       Beginner
	metrics  *Metrics
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMetrics records every load outcome in m.
func WithMetrics(m *Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// WithLogger sets the base logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader over registry and db.
func NewLoader(registry *Registry, db Beginner, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry: registry,
		db:       db,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load sanitizes lines and applies them to the table configured for kind.
//
// The only returned error is ErrUnknownFileKind. Every other failure is
// reported through a LoadResult with StatusError; in that case no change to
// staging or target is visible afterwards and RowsUpserted is 0.
func (l *Loader) Load(ctx context.Context, kind FileKind, lines []string, displayName string) (LoadResult, error) {
	cfg, err := l.registry.Lookup(kind)
	if err != nil {
		return LoadResult{}, err
	}

	start := time.Now()
	result := l.load(ctx, cfg, lines, displayName)
	l.metrics.observe(result, time.Since(start))

	return result, nil
}

func (l *Loader) load(ctx context.Context, cfg FileConfig, lines []string, displayName string) LoadResult {
	logger := l.logger.With(
		"run_id", uuid.NewString(),
		"kind", string(cfg.Kind),
		"file", displayName,
	)

	result := LoadResult{
		File: displayName,
		Type: cfg.Kind,
	}

	records := Sanitize(lines)
	result.RowsRead = len(records)

	if len(records) == 0 {
		logger.Info("no data records, skipping load")
		result.Status = StatusSkipped
		return result
	}

	payload, distinct, err := buildCopyPayload(cfg, records)
	if err != nil {
		return failed(logger, result, err)
	}
	if distinct < len(records) {
		logger.Warn("duplicate keys in batch, keeping last occurrence",
			"records", len(records),
			"distinct", distinct,
		)
	}

	upserted, err := l.apply(ctx, cfg, payload, logger)
	if err != nil {
		return failed(logger, result, err)
	}

	result.Status = StatusSuccess
	result.RowsUpserted = upserted
	logger.Info("load committed",
		"rows_read", result.RowsRead,
		"rows_upserted", upserted,
	)
	return result
}

func failed(logger *slog.Logger, result LoadResult, err error) LoadResult {
	logger.Error("load failed", "error", err, "rows_read", result.RowsRead)
	result.Status = StatusError
	result.RowsUpserted = 0
	result.Error = err.Error()
	return result
}

// apply runs truncate, copy and upsert in one transaction and commits.
func (l *Loader) apply(ctx context.Context, cfg FileConfig, payload []byte, logger *slog.Logger) (int64, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback must run even when ctx is already cancelled.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Warn("rollback failed", "error", rbErr)
		} else {
			logger.Debug("transaction rolled back")
		}
	}()

	if _, err := tx.Exec(ctx, truncateSQL(cfg)); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", cfg.StagingTable, err)
	}
	logger.Debug("staging truncated", "table", cfg.StagingTable)

	tag, err := tx.CopyFrom(ctx, bytes.NewReader(payload), copySQL(cfg))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", cfg.StagingTable, err)
	}
	logger.Debug("staging loaded", "table", cfg.StagingTable, "rows", tag.RowsAffected())

	tag, err = tx.Exec(ctx, upsertSQL(cfg))
	if err != nil {
		return 0, fmt.Errorf("upsert into %s: %w", cfg.Table, err)
	}
	upserted := tag.RowsAffected()
	logger.Debug("target upserted", "table", cfg.Table, "rows", upserted)

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true

	return upserted, nil
}

// ParseRecord splits one record on FieldDelimiter. Double quotes group a
// field and "" inside a quoted field is a literal quote; a stray quote inside
// an unquoted field is kept as data. The result is used for field-count and
// key checks only. The COPY payload carries the record text unchanged.
func ParseRecord(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = FieldDelimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []string{}, nil
	}
	return fields, err
}

// buildCopyPayload checks the field count of every record, collapses
// duplicate primary keys (last occurrence wins, at the position of the
// first) and joins the surviving records as COPY input, one per line.
// It returns the payload and the number of distinct rows.
func buildCopyPayload(cfg FileConfig, records []string) ([]byte, int, error) {
	keyPos := cfg.keyPositions()
	rows := make([]string, 0, len(records))
	index := make(map[string]int, len(records))

	for i, rec := range records {
		fields, err := ParseRecord(rec)
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		if len(fields) != len(cfg.Columns) {
			return nil, 0, fmt.Errorf("record %d: %w: got %d fields, want %d",
				i+1, ErrFieldCount, len(fields), len(cfg.Columns))
		}

		key := rowKey(fields, keyPos)
		if at, seen := index[key]; seen {
			rows[at] = rec
			continue
		}
		index[key] = len(rows)
		rows = append(rows, rec)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		buf.WriteString(row)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), len(rows), nil
}

func rowKey(fields []string, keyPos []int) string {
	parts := make([]string, len(keyPos))
	for i, p := range keyPos {
		parts[i] = fields[p]
	}
	return strings.Join(parts, "\x00")
}

// ============================================================================
// SQL builders
// ============================================================================

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func identList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = ident(n)
	}
	return strings.Join(quoted, ", ")
}

func truncateSQL(cfg FileConfig) string {
	return "TRUNCATE TABLE " + ident(cfg.StagingTable)
}

func copySQL(cfg FileConfig) string {
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, DELIMITER '|', NULL '')",
		ident(cfg.StagingTable), identList(cfg.Columns))
}

func upsertSQL(cfg FileConfig) string {
	nonKey := cfg.NonKeyColumns()
	set := make([]string, len(nonKey))
	for i, c := range nonKey {
		set[i] = fmt.Sprintf("%s = EXCLUDED.%s", ident(c), ident(c))
	}

	cols := identList(cfg.Columns)
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		ident(cfg.Table), cols, cols, ident(cfg.StagingTable),
		identList(cfg.PrimaryKey), strings.Join(set, ", "),
	)
}
