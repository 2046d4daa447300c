package oui

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"

	"switchscope/internal/domain"
)

// Store persists the OUI → manufacturer reference table in SQLite. This is
// reference data, not discovery history: the table survives restarts so the
// pipeline does not depend on re-downloading the IEEE registry.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the vendor database at path and seeds it from the
// builtin table when empty. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vendor db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate vendor db: %w", err)
	}
	if err := s.seedIfEmpty(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed vendor db: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS vendors (
		prefix TEXT PRIMARY KEY,
		vendor TEXT NOT NULL
	);`)
	return err
}

func (s *Store) seedIfEmpty(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for prefix, vendor := range Builtin {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO vendors (prefix, vendor) VALUES (?, ?)`,
			prefix, vendor); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Vendor returns the manufacturer for a normalized "AA:BB:CC" prefix, or ""
// when unknown.
func (s *Store) Vendor(ctx context.Context, prefix string) (string, error) {
	var vendor string
	err := s.db.QueryRowContext(ctx,
		`SELECT vendor FROM vendors WHERE prefix = ?`, prefix).Scan(&vendor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("vendor lookup %s: %w", prefix, err)
	}
	return vendor, nil
}

// Count returns the number of registered prefixes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vendors`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ImportIEEE loads prefixes from an IEEE oui.txt registry dump. Lines look
// like:
//
//	28-6F-7F   (hex)		Cisco Systems, Inc
//
// Other lines are skipped. Returns the number of prefixes imported.
func (s *Store) ImportIEEE(ctx context.Context, r io.Reader) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		prefix, vendor, ok := parseIEEELine(scanner.Text())
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO vendors (prefix, vendor) VALUES (?, ?)`,
			prefix, vendor); err != nil {
			return 0, err
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read registry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}

// parseIEEELine extracts ("AA:BB:CC", vendor) from one "(hex)" registry line.
func parseIEEELine(line string) (string, string, bool) {
	idx := strings.Index(line, "(hex)")
	if idx < 0 {
		return "", "", false
	}

	rawPrefix := strings.TrimSpace(line[:idx])
	vendor := strings.TrimSpace(line[idx+len("(hex)"):])
	if vendor == "" {
		return "", "", false
	}

	prefix := domain.NormalizeMAC(rawPrefix + "-00-00-00")
	if len(prefix) < 8 {
		return "", "", false
	}
	return prefix[:8], vendor, true
}
