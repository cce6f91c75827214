package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx records the statements a load issues.
type fakeTx struct {
	failOn string // truncate, copy, upsert, commit

	execs      []string
	copySQL    string
	copyData   string
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tx.execs = append(tx.execs, sql)
	switch {
	case strings.HasPrefix(sql, "TRUNCATE"):
		if tx.failOn == "truncate" {
			return pgconn.CommandTag{}, errors.New(`relation "stg" does not exist`)
		}
		return pgconn.NewCommandTag("TRUNCATE TABLE"), nil
	case strings.HasPrefix(sql, "INSERT"):
		if tx.failOn == "upsert" {
			return pgconn.CommandTag{}, errors.New(`violates foreign key constraint "issue_issuer_num_fkey"`)
		}
		rows := strings.Count(tx.copyData, "\n")
		return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", rows)), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement: %s", sql)
}

func (tx *fakeTx) CopyFrom(_ context.Context, r io.Reader, sql string) (pgconn.CommandTag, error) {
	tx.copySQL = sql
	data, err := io.ReadAll(r)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	tx.copyData = string(data)
	if tx.failOn == "copy" {
		return pgconn.CommandTag{}, errors.New(`invalid input syntax for type numeric: "N/A"`)
	}
	return pgconn.NewCommandTag(fmt.Sprintf("COPY %d", strings.Count(tx.copyData, "\n"))), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.failOn == "commit" {
		return errors.New("connection reset by peer")
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return nil
	}
	tx.rolledBack = true
	return nil
}

// fakeDB hands out fakeTx values.
type fakeDB struct {
	failOn   string
	beginErr error
	txs      []*fakeTx
}

func (db *fakeDB) Begin(context.Context) (Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	tx := &fakeTx{failOn: db.failOn}
	db.txs = append(db.txs, tx)
	return tx, nil
}

func (db *fakeDB) lastTx() *fakeTx {
	if len(db.txs) == 0 {
		return nil
	}
	return db.txs[len(db.txs)-1]
}

// fakeSource serves files from memory keyed by display path.
type fakeSource struct {
	files   map[string][]string
	readErr map[string]error
	reads   []string
}

func (s *fakeSource) FindFilesForDate(context.Context, time.Time) (FileSet, error) {
	return FileSet{}, errors.New("not used")
}

func (s *fakeSource) ReadFile(_ context.Context, loc FileLocation) ([]string, error) {
	name := loc.DisplayPath()
	s.reads = append(s.reads, name)
	if err := s.readErr[name]; err != nil {
		return nil, err
	}
	return s.files[name], nil
}

func localLoc(name string) *FileLocation {
	return &FileLocation{Name: name, Source: SourceLocal, Path: "/data/" + name}
}
