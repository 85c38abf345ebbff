// FILE: companion/internal/store/sqlite.go
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single-table SQLite database.
// A value row holds either int_value or str_value; the other column is NULL.
type SQLite struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewSQLite opens (and initializes) the database at path. ":memory:" is accepted.
func NewSQLite(path string, logger *logrus.Logger) (*SQLite, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for '%s': %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database '%s': %w", path, err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.WithField("path", path).Debug("Opened settings database")
	return s, nil
}

func (s *SQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS settings (
		scope TEXT NOT NULL,
		name TEXT NOT NULL,
		int_value INTEGER,
		str_value TEXT,
		PRIMARY KEY (scope, name)
	);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLite) get(scope, name string) (sql.NullInt64, sql.NullString, bool, error) {
	var (
		i   sql.NullInt64
		str sql.NullString
	)
	err := s.db.QueryRow(
		`SELECT int_value, str_value FROM settings WHERE scope = ? AND name = ?`,
		scope, name,
	).Scan(&i, &str)
	if errors.Is(err, sql.ErrNoRows) {
		return i, str, false, nil
	}
	if err != nil {
		return i, str, false, fmt.Errorf("failed to read %s/%s: %w", scope, name, err)
	}
	return i, str, true, nil
}

func (s *SQLite) Int(scope, name string) (int, bool, error) {
	i, _, ok, err := s.get(scope, name)
	if err != nil || !ok {
		return 0, false, err
	}
	if !i.Valid {
		return 0, false, fmt.Errorf("%w: %s/%s is a string", ErrTypeMismatch, scope, name)
	}
	return toDWORD(int(i.Int64)), true, nil
}

func (s *SQLite) SetInt(scope, name string, value int) error {
	if err := validateName(scope, name); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO settings (scope, name, int_value, str_value) VALUES (?, ?, ?, NULL)
		ON CONFLICT(scope, name) DO UPDATE SET int_value = excluded.int_value, str_value = NULL`,
		scope, name, int64(toDWORD(value)),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", scope, name, err)
	}
	return nil
}

func (s *SQLite) String(scope, name string) (string, bool, error) {
	_, str, ok, err := s.get(scope, name)
	if err != nil || !ok {
		return "", false, err
	}
	if !str.Valid {
		return "", false, fmt.Errorf("%w: %s/%s is an integer", ErrTypeMismatch, scope, name)
	}
	return str.String, true, nil
}

func (s *SQLite) SetString(scope, name, value string) error {
	if err := validateName(scope, name); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO settings (scope, name, int_value, str_value) VALUES (?, ?, NULL, ?)
		ON CONFLICT(scope, name) DO UPDATE SET int_value = NULL, str_value = excluded.str_value`,
		scope, name, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", scope, name, err)
	}
	return nil
}

func (s *SQLite) Delete(scope, name string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE scope = ? AND name = ?`, scope, name); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", scope, name, err)
	}
	return nil
}

func (s *SQLite) DeleteScope(scope string) error {
	if scope == GlobalScope {
		return fmt.Errorf("refusing to delete the global scope")
	}
	if _, err := s.db.Exec(`DELETE FROM settings WHERE scope = ?`, scope); err != nil {
		return fmt.Errorf("failed to delete scope %s: %w", scope, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
