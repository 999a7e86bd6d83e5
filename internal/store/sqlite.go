package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS carts (
	session_id TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS carts_updated_at ON carts(updated_at);
`

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the cart database at path. The special path
// ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "cart database", path, err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			logging.Debug().Err(err).Str("pragma", pragma).Msg("SQLite pragma not applied")
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.WrapResource("migrate", "cart database", path, err)
	}

	logging.Debug().Str("path", path).Msg("Opened cart database")
	return &SQLite{db: db, path: path}, nil
}

// Load returns the stored cart string.
func (s *SQLite) Load(ctx context.Context, sessionID string) (string, error) {
	if err := checkSession(sessionID); err != nil {
		return "", err
	}
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM carts WHERE session_id = ?`, sessionID).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.WrapResource("load", "cart", sessionID, err)
	}
	return payload, nil
}

// Save upserts the cart string.
func (s *SQLite) Save(ctx context.Context, sessionID, payload string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carts (session_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		sessionID, payload, time.Now().UTC().UnixNano())
	if err != nil {
		return errors.WrapResource("save", "cart", sessionID, err)
	}
	return nil
}

// Delete removes the session's cart.
func (s *SQLite) Delete(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE session_id = ?`, sessionID); err != nil {
		return errors.WrapResource("delete", "cart", sessionID, err)
	}
	return nil
}

// Sessions returns the sessions with a stored cart, sorted.
func (s *SQLite) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM carts ORDER BY session_id`)
	if err != nil {
		return nil, errors.WrapResource("list", "carts", "", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.WrapResource("list", "carts", "", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "carts", "", err)
	}
	return out, nil
}

// Prune deletes carts last saved before the given time.
func (s *SQLite) Prune(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE updated_at < ?`, before.UTC().UnixNano())
	if err != nil {
		return 0, errors.WrapResource("prune", "carts", "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WrapResource("prune", "carts", "", err)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *SQLite) Path() string {
	return s.path
}
