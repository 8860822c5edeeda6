// Package provenance keeps an audit trail of tracked transformations in
// SQLite so that a pipeline run can be inspected and replayed.
package provenance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one applied transformation.
type Entry struct {
	Seq       int64
	Transform string
	Identity  string
	Parent    string
	DType     string
	Shape     string
	Path      string
	CreatedAt time.Time
}

type Journal struct {
	db *sql.DB
}

const schema = `
create table if not exists transformations (
    seq integer primary key autoincrement,
    transform text not null,
    identity text not null,
    parent text not null,
    dtype text not null,
    shape text not null,
    path text not null default '',
    created_at timestamp not null
);
create index if not exists transformations_identity_idx on transformations(identity);
`

// Open opens (creating if needed) the journal database at filename.
// ":memory:" gives a throwaway journal.
func Open(ctx context.Context, filename string) (*Journal, error) {
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("while opening journal %q: %w", filename, err)
	}
	// a single connection keeps ":memory:" databases alive and writes ordered
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("while creating journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends e and returns its sequence number.
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := j.db.ExecContext(ctx, `
insert into transformations (transform, identity, parent, dtype, shape, path, created_at)
values (?, ?, ?, ?, ?, ?, ?)`,
		e.Transform, e.Identity, e.Parent, e.DType, e.Shape, e.Path, e.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("while recording %s: %w", e.Transform, err)
	}
	return res.LastInsertId()
}

// Entries returns every recorded transformation in application order.
func (j *Journal) Entries(ctx context.Context) ([]Entry, error) {
	return j.query(ctx, `
select seq, transform, identity, parent, dtype, shape, path, created_at
from transformations order by seq`)
}

// Lineage follows parent links back from identity and returns the chain
// of transformations that produced it, oldest first.
func (j *Journal) Lineage(ctx context.Context, identity string) ([]Entry, error) {
	var chain []Entry
	seen := make(map[string]bool)
	for identity != "" && !seen[identity] {
		seen[identity] = true
		entries, err := j.query(ctx, `
select seq, transform, identity, parent, dtype, shape, path, created_at
from transformations where identity = ? order by seq limit 1`, identity)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			break
		}
		chain = append([]Entry{entries[0]}, chain...)
		identity = entries[0].Parent
	}
	return chain, nil
}

func (j *Journal) query(ctx context.Context, q string, args ...interface{}) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("while reading journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.Transform, &e.Identity, &e.Parent, &e.DType, &e.Shape, &e.Path, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("while scanning journal row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
