package logging

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region schema
const evaluationSchema = `
CREATE TABLE IF NOT EXISTS evaluation_log (
	id             TEXT PRIMARY KEY,
	source         TEXT NOT NULL,
	config_version TEXT,
	record_count   INTEGER NOT NULL,
	filter_json    TEXT,
	kpis_json      TEXT,
	gate_a         INTEGER NOT NULL,
	gate_b         INTEGER NOT NULL,
	gate_c         INTEGER NOT NULL,
	reason         TEXT,
	created_at     TEXT NOT NULL
);
`

// EnsureEvaluationLog creates the evaluation_log table if needed.
func EnsureEvaluationLog(db *sql.DB) error {
	if _, err := db.Exec(evaluationSchema); err != nil {
		return fmt.Errorf("migrate evaluation_log: %w", err)
	}
	return nil
}

// #endregion schema

// #region log-evaluation
// LogEvaluation writes an entry to the evaluation_log table. A missing ID or
// CreatedAt is filled in.
func LogEvaluation(db *sql.DB, entry EvaluationEntry) (EvaluationEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO evaluation_log (id, source, config_version, record_count, filter_json, kpis_json,
		 gate_a, gate_b, gate_c, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Source,
		nullIfEmpty(entry.ConfigVersion),
		entry.RecordCount,
		nullIfEmpty(entry.FilterJSON),
		nullIfEmpty(entry.KPIsJSON),
		entry.GateA,
		entry.GateB,
		entry.GateC,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return EvaluationEntry{}, fmt.Errorf("log evaluation: %w", err)
	}
	return entry, nil
}

// #endregion log-evaluation

// #region recent
// RecentEvaluations returns up to limit entries, newest first.
func RecentEvaluations(db *sql.DB, limit int) ([]EvaluationEntry, error) {
	rows, err := db.Query(
		`SELECT id, source, config_version, record_count, filter_json, kpis_json,
		        gate_a, gate_b, gate_c, reason, created_at
		 FROM evaluation_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent evaluations: %w", err)
	}
	defer rows.Close()

	out := []EvaluationEntry{}
	for rows.Next() {
		var e EvaluationEntry
		var cfgVersion, filterJSON, kpisJSON, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.Source, &cfgVersion, &e.RecordCount, &filterJSON, &kpisJSON,
			&e.GateA, &e.GateB, &e.GateC, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.ConfigVersion = cfgVersion.String
		e.FilterJSON = filterJSON.String
		e.KPIsJSON = kpisJSON.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent

// #region helpers
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers

// #region evaluation-log
// EvaluationLog binds the evaluation_log helpers to one database.
type EvaluationLog struct {
	db *sql.DB
}

// NewEvaluationLog creates the table if needed and returns a log over db.
func NewEvaluationLog(db *sql.DB) (*EvaluationLog, error) {
	if err := EnsureEvaluationLog(db); err != nil {
		return nil, err
	}
	return &EvaluationLog{db: db}, nil
}

// Log writes one entry.
func (l *EvaluationLog) Log(entry EvaluationEntry) (EvaluationEntry, error) {
	return LogEvaluation(l.db, entry)
}

// Recent returns up to limit entries, newest first.
func (l *EvaluationLog) Recent(limit int) ([]EvaluationEntry, error) {
	return RecentEvaluations(l.db, limit)
}

// #endregion evaluation-log
