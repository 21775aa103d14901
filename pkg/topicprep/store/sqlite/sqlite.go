package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	log "github.com/golang/glog"
	_ "modernc.org/sqlite"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
)

// Source keeps raw corpus lines in a SQLite table and serves them as a
// corpus.Source in insertion order.
type Source struct {
	db        *sql.DB
	path      string
	separator string
}

// Open opens an existing corpus database at path with WAL enabled. A missing
// file is reported as unreadable rather than created.
// sep splits stored lines into tokens; empty means corpus.DefaultSeparator.
func Open(ctx context.Context, path, sep string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &corpus.UnreadableError{Location: path, Err: err}
	}
	return open(ctx, path, sep)
}

// Create opens the corpus database at path, creating it if needed.
func Create(ctx context.Context, path, sep string) (*Source, error) {
	return open(ctx, path, sep)
}

func open(ctx context.Context, path, sep string) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &corpus.UnreadableError{Location: path, Err: err}
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &corpus.UnreadableError{Location: path, Err: err}
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, &corpus.UnreadableError{Location: path, Err: err}
	}

	return &Source{db: db, path: path, separator: sep}, nil
}

// Close closes the database connection
func (s *Source) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS docs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	body TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// AddDocs appends raw lines in one transaction. Lines are stored verbatim;
// trimming and splitting happen on Walk.
func (s *Source) AddDocs(ctx context.Context, lines ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO docs(body) VALUES (?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx, line); err != nil {
			return fmt.Errorf("insert doc: %w", err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored rows, blank ones included.
func (s *Source) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM docs`).Scan(&n)
	return n, err
}

// Walk implements corpus.Source. Rows are read ordered by id; rows that are
// blank after trimming produce no document.
func (s *Source) Walk(ctx context.Context, fn func(corpus.Document) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM docs ORDER BY id`)
	if err != nil {
		return &corpus.UnreadableError{Location: s.path, Err: err}
	}
	defer rows.Close()

	next := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var body string
		if err := rows.Scan(&body); err != nil {
			return err
		}
		tokens, ok := corpus.SplitLine(body, s.separator)
		if !ok {
			continue
		}
		if err := fn(corpus.Document{Index: next, Tokens: tokens}); err != nil {
			if errors.Is(err, corpus.SkipRest) {
				return nil
			}
			return err
		}
		next++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	log.V(1).Infof("sqlite %s: %d documents", s.path, next)
	return nil
}
