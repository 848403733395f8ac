/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Persists the traveler's records locally: global settings, loyalty
  programs, candidate hotel stays, and the last fetched FX rate table.
  Programs and hotels are stored as JSON documents (the factory package
  owns their schema), so field evolution never needs a column migration.

KEY TABLES:
  settings:  Singleton global-settings document
  programs:  Loyalty program documents
  hotels:    Candidate stay documents, each referencing a program
  fx_rates:  Singleton cached rate table (see rates.Cache)

CASCADE DELETE:
  Deleting a program deletes every hotel referencing it, in one
  transaction. The valuation engine treats a dangling program reference
  as an unresolved stay, so the store never leaves one behind through
  its own operations.

WAL MODE:
  The database is opened with WAL for better concurrency: readers don't
  block, single writer, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/stays.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory: Document schema for programs/hotels/settings
  - rates: The cache interface fx_rates backs
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements persistence for settings, programs, hotels, and the
// cached rate table.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Global settings (singleton document, id fixed to 1)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		doc_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Loyalty programs
	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		doc_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Candidate stays, each tied to a program
	CREATE TABLE IF NOT EXISTS hotels (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL,
		name TEXT NOT NULL,
		doc_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_hotels_program
		ON hotels(program_id);

	-- Cached FX rate table (singleton, id fixed to 1)
	CREATE TABLE IF NOT EXISTS fx_rates (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		doc_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORDS
// =============================================================================

// ProgramRecord is a stored program row. Doc holds the factory-schema
// JSON document.
type ProgramRecord struct {
	ID        string
	Name      string
	Doc       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HotelRecord is a stored hotel row.
type HotelRecord struct {
	ID        string
	ProgramID string
	Name      string
	Doc       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// SETTINGS
// =============================================================================

// SaveSettings upserts the singleton global-settings document.
func (s *Store) SaveSettings(ctx context.Context, doc string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, doc_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc_json = excluded.doc_json, updated_at = excluded.updated_at`,
		doc, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetSettings returns the settings document, or "" when none has been
// saved yet.
func (s *Store) GetSettings(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc_json FROM settings WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc, nil
}

// =============================================================================
// PROGRAMS
// =============================================================================

// SaveProgram upserts a program record, preserving created_at on update.
func (s *Store) SaveProgram(ctx context.Context, rec ProgramRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO programs (id, name, doc_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			doc_json = excluded.doc_json,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Name, rec.Doc, now, now)
	return err
}

// GetProgram returns a program record, or nil when it doesn't exist.
func (s *Store) GetProgram(ctx context.Context, id string) (*ProgramRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, doc_json, created_at, updated_at FROM programs WHERE id = ?`, id)
	return scanProgram(row)
}

// ListPrograms returns all programs in creation order.
func (s *Store) ListPrograms(ctx context.Context) ([]ProgramRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, doc_json, created_at, updated_at
		FROM programs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ProgramRecord
	for rows.Next() {
		rec, err := scanProgramRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteProgram deletes a program and cascades to every hotel
// referencing it, atomically. Returns false when the program didn't
// exist.
func (s *Store) DeleteProgram(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hotels WHERE program_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM programs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

// =============================================================================
// HOTELS
// =============================================================================

// SaveHotel upserts a hotel record.
func (s *Store) SaveHotel(ctx context.Context, rec HotelRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO hotels (id, program_id, name, doc_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			program_id = excluded.program_id,
			name = excluded.name,
			doc_json = excluded.doc_json,
			updated_at = excluded.updated_at`,
		rec.ID, rec.ProgramID, rec.Name, rec.Doc, now, now)
	return err
}

// GetHotel returns a hotel record, or nil when it doesn't exist.
func (s *Store) GetHotel(ctx context.Context, id string) (*HotelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, program_id, name, doc_json, created_at, updated_at FROM hotels WHERE id = ?`, id)
	return scanHotel(row)
}

// ListHotels returns all hotels in creation order.
func (s *Store) ListHotels(ctx context.Context) ([]HotelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, program_id, name, doc_json, created_at, updated_at
		FROM hotels ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []HotelRecord
	for rows.Next() {
		rec, err := scanHotelRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteHotel deletes a hotel. Returns false when it didn't exist.
func (s *Store) DeleteHotel(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// =============================================================================
// FX RATE CACHE - backs the rates.Cache interface
// =============================================================================

// SaveRates upserts the singleton cached rate-table document.
func (s *Store) SaveRates(ctx context.Context, doc string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fx_rates (id, doc_json, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc_json = excluded.doc_json, updated_at = excluded.updated_at`,
		doc, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetRates returns the cached rate-table document and whether one
// exists.
func (s *Store) GetRates(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc_json FROM fx_rates WHERE id = 1`).Scan(&doc)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc, true, nil
}

// =============================================================================
// SCANNING HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row *sql.Row) (*ProgramRecord, error) {
	rec, err := scanProgramRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanProgramRow(row rowScanner) (ProgramRecord, error) {
	var rec ProgramRecord
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Doc, &createdAt, &updatedAt); err != nil {
		return rec, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

func scanHotel(row *sql.Row) (*HotelRecord, error) {
	rec, err := scanHotelRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanHotelRow(row rowScanner) (HotelRecord, error) {
	var rec HotelRecord
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.ProgramID, &rec.Name, &rec.Doc, &createdAt, &updatedAt); err != nil {
		return rec, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}
