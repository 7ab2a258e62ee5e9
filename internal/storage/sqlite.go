// Package storage persists the tariff catalog in SQLite so the embedding
// dump only has to be ingested once.
package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/marhaven/tariffdesk/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the catalog schema if it does not exist.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tariff_records (
			code        TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			base_rate   TEXT NOT NULL,
			embedding   BLOB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRecords upserts catalog records in one transaction.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, records []model.TariffRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tariff_records (code, description, base_rate, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			description = excluded.description,
			base_rate   = excluded.base_rate,
			embedding   = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if rec.Code == "" {
			return fmt.Errorf("record with empty code")
		}
		if _, err := stmt.ExecContext(ctx, rec.Code, rec.Description, rec.BaseRate, encodeVector(rec.Embedding)); err != nil {
			return fmt.Errorf("failed to save record %s: %w", rec.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadAll reads every catalog record in insertion order.
func (s *SQLiteStorage) LoadAll(ctx context.Context) ([]model.TariffRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, description, base_rate, embedding
		FROM tariff_records
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.TariffRecord
	for rows.Next() {
		var rec model.TariffRecord
		var blob []byte
		if err := rows.Scan(&rec.Code, &rec.Description, &rec.BaseRate, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Embedding, err = decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.Code, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// Count returns the number of stored catalog records.
func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tariff_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// encodeVector packs a float32 vector as a little-endian blob.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a little-endian blob into a float32 vector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
