// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package rulestore implements the rule-store collaborator (spec §6):
// persisted CRUD for user-defined matching rules, backed by
// modernc.org/sqlite (pure Go, no cgo).
package rulestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reservesd/reservesd/internal/catalogue"
)

// ErrNotFound is returned when a rule id has no matching row.
var ErrNotFound = errors.New("rulestore: rule not found")

// Config controls the underlying SQLite connection.
type Config struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultConfig mirrors the busy-timeout/pool sizing the teacher's
// own sqlite collaborator uses.
func DefaultConfig() Config {
	return Config{BusyTimeout: 5 * time.Second, MaxOpenConns: 25}
}

// Store is a SQLite-backed implementation of the rule-store contract.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at dbPath and
// ensures the rules table exists.
func Open(dbPath string, cfg Config) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("rulestore: create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("rulestore: open failed: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rulestore: ping failed: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rulestore: migrate failed: %w", err)
	}

	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS rules (
	id TEXT PRIMARY KEY,
	enabled INTEGER NOT NULL,
	search_option TEXT NOT NULL,
	rule_option TEXT NOT NULL,
	encode_option TEXT
);
`

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FindAll returns every persisted rule.
func (s *Store) FindAll(ctx context.Context) ([]catalogue.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, enabled, search_option, rule_option, encode_option FROM rules`)
	if err != nil {
		return nil, fmt.Errorf("rulestore: find all: %w", err)
	}
	defer rows.Close()

	var out []catalogue.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FindByID returns the rule with id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (catalogue.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, enabled, search_option, rule_option, encode_option FROM rules WHERE id = ?`, id)
	if err != nil {
		return catalogue.Rule{}, fmt.Errorf("rulestore: find by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return catalogue.Rule{}, ErrNotFound
	}
	return scanRule(rows)
}

// Upsert inserts or replaces a rule.
func (s *Store) Upsert(ctx context.Context, r catalogue.Rule) error {
	searchJSON, err := json.Marshal(r.ToSearchOption())
	if err != nil {
		return fmt.Errorf("rulestore: marshal search option: %w", err)
	}
	ruleOptJSON, err := json.Marshal(r.RuleOptionInput)
	if err != nil {
		return fmt.Errorf("rulestore: marshal rule option: %w", err)
	}
	encodeOptJSON, err := json.Marshal(r.EncodeOptionInput)
	if err != nil {
		return fmt.Errorf("rulestore: marshal encode option: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rules (id, enabled, search_option, rule_option, encode_option)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			search_option = excluded.search_option,
			rule_option = excluded.rule_option,
			encode_option = excluded.encode_option
	`, r.ID, boolToInt(r.Enabled), string(searchJSON), string(ruleOptJSON), string(encodeOptJSON))
	if err != nil {
		return fmt.Errorf("rulestore: upsert: %w", err)
	}
	return nil
}

// Delete removes a rule by id. Deleting a non-existent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("rulestore: delete: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRule(rows scanner) (catalogue.Rule, error) {
	var (
		id                      string
		enabled                 int
		searchJSON, ruleOptJSON string
		encodeOptJSON           sql.NullString
	)
	if err := rows.Scan(&id, &enabled, &searchJSON, &ruleOptJSON, &encodeOptJSON); err != nil {
		return catalogue.Rule{}, fmt.Errorf("rulestore: scan: %w", err)
	}

	var opt catalogue.SearchOption
	if err := json.Unmarshal([]byte(searchJSON), &opt); err != nil {
		return catalogue.Rule{}, fmt.Errorf("rulestore: unmarshal search option: %w", err)
	}
	var ruleOpt catalogue.RuleOptionInput
	if err := json.Unmarshal([]byte(ruleOptJSON), &ruleOpt); err != nil {
		return catalogue.Rule{}, fmt.Errorf("rulestore: unmarshal rule option: %w", err)
	}
	var encodeOpt catalogue.EncodeOptionInput
	if encodeOptJSON.Valid {
		if err := json.Unmarshal([]byte(encodeOptJSON.String), &encodeOpt); err != nil {
			return catalogue.Rule{}, fmt.Errorf("rulestore: unmarshal encode option: %w", err)
		}
	}

	return catalogue.Rule{
		ID:                id,
		Enabled:           enabled != 0,
		Week:              opt.Week,
		Keyword:           opt.Keyword,
		IgnoreKeyword:     opt.IgnoreKeyword,
		CaseSensitive:     opt.CaseSensitive,
		Regex:             opt.Regex,
		Title:             opt.Title,
		Description:       opt.Description,
		Extended:          opt.Extended,
		GR:                opt.GR,
		BS:                opt.BS,
		CS:                opt.CS,
		Sky:               opt.Sky,
		Station:           opt.Station,
		GenreLevel1:       opt.GenreLevel1,
		GenreLevel2:       opt.GenreLevel2,
		StartTime:         opt.StartTime,
		TimeRange:         opt.TimeRange,
		IsFree:            opt.IsFree,
		DurationMin:       opt.DurationMinMin,
		DurationMax:       opt.DurationMinMax,
		RuleOptionInput:   ruleOpt,
		EncodeOptionInput: encodeOpt,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
