package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a per-project SQLite database, usually at
// <project>/.agent/workspace.db.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	// WAL mode allows readers to proceed while one writer is active.
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace db: %w", err)
	}

	// SQLite handles a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping workspace db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize workspace schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS files (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		path        TEXT NOT NULL UNIQUE,
		parent_path TEXT NOT NULL DEFAULT '',
		kind        TEXT NOT NULL,
		content     TEXT NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_files_parent ON files(parent_path);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) FindByPath(p string) (*FileRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, name, path, parent_path, kind, content, created_at, updated_at
		 FROM files WHERE path = ?`, CleanPath(p))
	return scanRecord(row)
}

func (s *SQLiteStore) Create(rec *FileRecord) error {
	if rec.Path == "" {
		return fmt.Errorf("workspace: empty path")
	}
	_, err := s.db.Exec(
		`INSERT INTO files (id, name, path, parent_path, kind, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Path, rec.ParentPath, string(rec.Kind), rec.Content,
		rec.CreatedAt.Unix(), rec.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("workspace: insert %s: %w", rec.Path, err)
	}
	return nil
}

func (s *SQLiteStore) Update(id string, patch Patch) error {
	row := s.db.QueryRow(
		`SELECT id, name, path, parent_path, kind, content, created_at, updated_at
		 FROM files WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		return err
	}

	if patch.Path != nil {
		newPath := CleanPath(*patch.Path)
		rec.Path = newPath
		rec.ParentPath = parentOf(newPath)
	}
	if patch.Name != nil {
		rec.Name = *patch.Name
	}
	if patch.Content != nil {
		rec.Content = *patch.Content
	}
	rec.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE files SET name = ?, path = ?, parent_path = ?, content = ?, updated_at = ?
		 WHERE id = ?`,
		rec.Name, rec.Path, rec.ParentPath, rec.Content, rec.UpdatedAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("workspace: update %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) List(parentPath string, recursive bool) ([]FileRecord, error) {
	parentPath = CleanPath(parentPath)

	var rows *sql.Rows
	var err error
	if recursive {
		if parentPath == "" {
			rows, err = s.db.Query(
				`SELECT id, name, path, parent_path, kind, content, created_at, updated_at
				 FROM files ORDER BY path`)
		} else {
			rows, err = s.db.Query(
				`SELECT id, name, path, parent_path, kind, content, created_at, updated_at
				 FROM files WHERE path LIKE ? ORDER BY path`, parentPath+"/%")
		}
	} else {
		rows, err = s.db.Query(
			`SELECT id, name, path, parent_path, kind, content, created_at, updated_at
			 FROM files WHERE parent_path = ? ORDER BY path`, parentPath)
	}
	if err != nil {
		return nil, fmt.Errorf("workspace: list %q: %w", parentPath, err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		var kind string
		var created, updated int64
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Path, &rec.ParentPath,
			&kind, &rec.Content, &created, &updated); err != nil {
			return nil, err
		}
		rec.Kind = Kind(kind)
		rec.CreatedAt = time.Unix(created, 0).UTC()
		rec.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row *sql.Row) (*FileRecord, error) {
	var rec FileRecord
	var kind string
	var created, updated int64
	err := row.Scan(&rec.ID, &rec.Name, &rec.Path, &rec.ParentPath,
		&kind, &rec.Content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)
	rec.CreatedAt = time.Unix(created, 0).UTC()
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return &rec, nil
}
