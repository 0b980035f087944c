package credstore

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hdngo/taskdeck/internal/models"
)

//go:embed schema.sql
var schema string

// Fixed key names for the persisted token pair.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Store persists session credentials and small client settings in a local
// sqlite database. It performs no validation of token shape; a malformed or
// expired token is only detected by the server's rejection.
type Store struct {
	db *sql.DB
}

// Open creates a store at the default location and initializes the schema.
func Open() (*Store, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath creates a store backed by the given database file.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// defaultPath returns the path to the database file
func defaultPath() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, "taskdeck")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, "taskdeck.db"), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the persisted session. Absent tokens come back as empty
// strings, never as an error.
func (s *Store) Get() (models.Session, error) {
	var sess models.Session

	access, err := s.credential(keyAccessToken)
	if err != nil {
		return sess, err
	}
	refresh, err := s.credential(keyRefreshToken)
	if err != nil {
		return sess, err
	}

	sess.AccessToken = access
	sess.RefreshToken = refresh
	return sess, nil
}

// Set persists both tokens atomically.
func (s *Store) Set(access, refresh string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range map[string]string{
		keyAccessToken:  access,
		keyRefreshToken: refresh,
	} {
		if _, err := tx.Exec(`
			INSERT INTO credentials (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetAccess replaces only the access token, retaining the refresh token.
func (s *Store) SetAccess(access string) error {
	_, err := s.db.Exec(`
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, keyAccessToken, access)
	return err
}

// Clear removes both tokens.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM credentials WHERE key IN (?, ?)",
		keyAccessToken, keyRefreshToken)
	return err
}

func (s *Store) credential(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// GetSetting retrieves a setting value by key
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
