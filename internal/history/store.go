// Package history persists analysis verdicts in SQLite so past scans can be
// listed and re-inspected.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/phishguard/phishguard/internal/logging"
	"github.com/phishguard/phishguard/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNotFound = errors.New("history: verdict not found")

// Record is a persisted verdict with its storage identity.
type Record struct {
	ID      string                 `json:"id"`
	Verdict model.DetectionVerdict `json:"verdict"`
}

type Config struct {
	// StoragePath is the directory holding the database file. Created if
	// missing.
	StoragePath string
}

// Store writes verdicts to a SQLite database. Safe for concurrent use; the
// driver serializes writers and WAL keeps readers unblocked.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

func NewStore(cfg *Config, logger logging.Logger) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = "."
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	dir := filepath.Join(cfg.StoragePath, ".phishguard")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("history store initialized", logging.Field{Key: "path", Value: dir})
	return &Store{db: db, logger: logger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Save persists v and returns the assigned record ID.
func (s *Store) Save(ctx context.Context, v *model.DetectionVerdict) (string, error) {
	if v == nil {
		return "", errors.New("history: nil verdict")
	}

	signals, err := json.Marshal(v.Signals)
	if err != nil {
		return "", fmt.Errorf("failed to marshal signals: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verdicts (id, url, classification, confidence, risk_score, analysis_mode, explanation, signals_json, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, v.URL, string(v.Classification), v.Confidence, v.RiskScore,
		string(v.AnalysisMode), v.Explanation, string(signals),
		v.AnalyzedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert verdict: %w", err)
	}

	s.logger.Debug("verdict saved",
		logging.Field{Key: "id", Value: id},
		logging.Field{Key: "url", Value: v.URL})
	return id, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, classification, confidence, risk_score, analysis_mode, explanation, signals_json, analyzed_at
		FROM verdicts WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List returns the most recent records, newest first, up to limit. A limit
// of 0 or less defaults to 50.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, classification, confidence, risk_score, analysis_mode, explanation, signals_json, analyzed_at
		FROM verdicts ORDER BY analyzed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListByURL returns all records for a URL, newest first.
func (s *Store) ListByURL(ctx context.Context, url string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, classification, confidence, risk_score, analysis_mode, explanation, signals_json, analyzed_at
		FROM verdicts WHERE url = ? ORDER BY analyzed_at DESC`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		class      string
		mode       string
		signals    string
		analyzedAt string
	)
	err := row.Scan(&rec.ID, &rec.Verdict.URL, &class, &rec.Verdict.Confidence,
		&rec.Verdict.RiskScore, &mode, &rec.Verdict.Explanation, &signals, &analyzedAt)
	if err != nil {
		return nil, err
	}
	rec.Verdict.Classification = model.Classification(class)
	rec.Verdict.AnalysisMode = model.AnalysisMode(mode)
	if err := json.Unmarshal([]byte(signals), &rec.Verdict.Signals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signals for %s: %w", rec.ID, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, analyzedAt); err == nil {
		rec.Verdict.AnalyzedAt = ts
	}
	return &rec, nil
}
