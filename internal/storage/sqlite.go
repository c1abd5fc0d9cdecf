package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    key     TEXT PRIMARY KEY,
    content BLOB NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
);`

// SQLite stores documents in a local sqlite file. The integer version column
// is the concurrency token.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) the document database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Load(ctx context.Context, key string) ([]byte, string, error) {
	var content []byte
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT content, version FROM documents WHERE key=?`, key,
	).Scan(&content, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return content, strconv.FormatInt(version, 10), nil
}

func (s *SQLite) Save(ctx context.Context, key string, data []byte, token string) (string, error) {
	if token == "" {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO documents(key, content, version) VALUES (?,?,1)`, key, data)
		if err != nil {
			// The key already existing is a create/create race.
			if exists, e2 := s.exists(ctx, key); e2 == nil && exists {
				return "", ErrConflict
			}
			return "", err
		}
		return "1", nil
	}

	version, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return "", fmt.Errorf("bad version token %q: %w", token, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET content=?, version=version+1 WHERE key=? AND version=?`,
		data, key, version)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrConflict
	}
	return strconv.FormatInt(version+1, 10), nil
}

func (s *SQLite) exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE key=?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
