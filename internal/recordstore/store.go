package recordstore

// #region imports
import (
	"database/sql"
	"fmt"

	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #endregion imports

// #region store

// Store persists the working record set. The set is replaced wholesale on
// every import; there is no per-record edit.
type Store struct {
	db *sql.DB
}

// NewStore creates the enforcement_records table if needed and returns a store.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("migrate records: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS enforcement_records (
		seq             INTEGER PRIMARY KEY,
		record_id       TEXT NOT NULL,
		ts              TEXT NOT NULL,
		policy_category TEXT NOT NULL,
		confidence      REAL NOT NULL,
		decision        TEXT NOT NULL,
		rationale       TEXT NOT NULL,
		slice           TEXT NOT NULL,
		language        TEXT NOT NULL,
		latency_ms      INTEGER NOT NULL,
		cost_cents      INTEGER NOT NULL,
		user_response   TEXT NOT NULL,
		appeal_outcome  TEXT NOT NULL
	)`)
	return err
}

// Replace swaps the stored set for rows in one transaction. Input order is kept.
func (s *Store) Replace(rows []records.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM enforcement_records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO enforcement_records
		(seq, record_id, ts, policy_category, confidence, decision, rationale,
		 slice, language, latency_ms, cost_cents, user_response, appeal_outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.Exec(
			i, r.ID.String(), records.FormatTimestamp(r.Timestamp), r.PolicyCategory,
			r.Confidence, string(r.Decision), r.Rationale, r.Slice, r.Language,
			r.LatencyMs, r.CostCents, string(r.UserResponse), string(r.AppealOutcome),
		)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns the stored set in import order. An empty store yields an
// empty, non-nil slice.
func (s *Store) List() ([]records.Record, error) {
	rows, err := s.db.Query(`SELECT record_id, ts, policy_category, confidence, decision,
		rationale, slice, language, latency_ms, cost_cents, user_response, appeal_outcome
		FROM enforcement_records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []records.Record{}
	for rows.Next() {
		var r records.Record
		var id, ts, decision, response, appeal string
		if err := rows.Scan(&id, &ts, &r.PolicyCategory, &r.Confidence, &decision,
			&r.Rationale, &r.Slice, &r.Language, &r.LatencyMs, &r.CostCents,
			&response, &appeal); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.ID = records.RecordID(id)
		r.Decision = records.Decision(decision)
		r.UserResponse = records.UserResponse(response)
		r.AppealOutcome = records.AppealOutcome(appeal)
		if r.Timestamp, err = records.ParseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns how many records are stored.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM enforcement_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// #endregion store
