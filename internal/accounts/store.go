// Package accounts persists extraction snapshots per account in a local
// SQLite database.
package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/exyezed/xmeta/pkg/database"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Record is a saved account with its most recent extraction response.
type Record struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profile_image"`
	TotalMedia   int       `json:"total_media"`
	LastFetched  time.Time `json:"last_fetched"`
	ResponseJSON string    `json:"response_json"`
}

// Summary is the listing view of a saved account.
type Summary struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
	TotalMedia   int    `json:"total_media"`
	LastFetched  string `json:"last_fetched"`
}

// ErrNotFound is returned when no record exists for the requested account.
var ErrNotFound = errors.New("account not found")

// Store is the account snapshot store.
type Store struct {
	db *database.Database
}

// DefaultPath returns the account database path under the user's home
// directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".xmeta", "accounts.db")
}

// Open opens (or creates) the account store at the given path.
func Open(path string) (*Store, error) {
	if err := database.EnsureDirectoryExists(path); err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(database.Config{Path: path, Driver: "sqlite"})
	if err != nil {
		return nil, fmt.Errorf("failed to open account database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initializeSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) initializeSchema() error {
	createAccountsTable := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		name TEXT,
		profile_image TEXT,
		total_media INTEGER DEFAULT 0,
		last_fetched DATETIME,
		response_json TEXT
	)`
	if err := s.db.ExecuteSchema(createAccountsTable); err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}
	return nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or updates the snapshot for one account.
func (s *Store) Save(rec Record) error {
	if rec.Username == "" {
		return errors.New("username is required")
	}
	if rec.LastFetched.IsZero() {
		rec.LastFetched = time.Now()
	}

	_, err := s.db.DB().Exec(`
		INSERT INTO accounts (username, name, profile_image, total_media, last_fetched, response_json)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			name = excluded.name,
			profile_image = excluded.profile_image,
			total_media = excluded.total_media,
			last_fetched = excluded.last_fetched,
			response_json = excluded.response_json`,
		rec.Username, rec.Name, rec.ProfileImage, rec.TotalMedia, rec.LastFetched, rec.ResponseJSON)
	return err
}

// List returns all saved accounts, most recently fetched first.
func (s *Store) List() ([]Summary, error) {
	rows, err := s.db.DB().Query(`
		SELECT id, username, name, profile_image, total_media, last_fetched
		FROM accounts
		ORDER BY last_fetched DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []Summary
	for rows.Next() {
		var acc Summary
		var lastFetched time.Time
		if err := rows.Scan(&acc.ID, &acc.Username, &acc.Name, &acc.ProfileImage, &acc.TotalMedia, &lastFetched); err != nil {
			return nil, err
		}
		acc.LastFetched = lastFetched.Format("2006-01-02 15:04")
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// Get returns the saved snapshot for a username.
func (s *Store) Get(username string) (*Record, error) {
	var rec Record
	err := s.db.DB().QueryRow(`
		SELECT id, username, name, profile_image, total_media, last_fetched, response_json
		FROM accounts WHERE username = ?`, username).
		Scan(&rec.ID, &rec.Username, &rec.Name, &rec.ProfileImage, &rec.TotalMedia, &rec.LastFetched, &rec.ResponseJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the saved snapshot for a username.
func (s *Store) Delete(username string) error {
	result, err := s.db.DB().Exec("DELETE FROM accounts WHERE username = ?", username)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every saved snapshot and returns the number deleted.
func (s *Store) Clear() (int64, error) {
	result, err := s.db.DB().Exec("DELETE FROM accounts")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Export writes the saved response JSON of one account to
// <outputDir>/<username>.json and returns the file path.
func (s *Store) Export(username, outputDir string) (string, error) {
	rec, err := s.Get(username)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outputDir, rec.Username+".json")
	if err := os.WriteFile(path, []byte(rec.ResponseJSON), 0644); err != nil {
		return "", err
	}
	return path, nil
}
