package configstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/policy-dash/internal/config"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS config_versions (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL UNIQUE,
	parent_id     TEXT,
	config_json   TEXT NOT NULL,
	note          TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_config (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES config_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store keeps every saved dashboard configuration and a pointer to the active one.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB so the record store and the evaluation
// log can share one file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region save
// Save stores cfg as a new version, parented on the current active version,
// and makes it active.
func (s *Store) Save(cfg config.DashboardConfig, note string) (Version, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return Version{}, fmt.Errorf("marshal config: %w", err)
	}

	v := Version{
		ID:        uuid.New().String(),
		Config:    cfg,
		Note:      note,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Version{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parent sql.NullString
	err = tx.QueryRow(`SELECT version_id FROM active_config WHERE id = 1`).Scan(&parent)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("get active: %w", err)
	}
	if parent.Valid {
		v.ParentID = parent.String
	}

	_, err = tx.Exec(
		`INSERT INTO config_versions (version_id, parent_id, config_json, note, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		v.ID, nullIfEmpty(v.ParentID), string(cfgJSON), nullIfEmpty(note),
		v.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Version{}, fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_config (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		v.ID,
	)
	if err != nil {
		return Version{}, fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Version{}, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

// #endregion save

// #region get-current
// GetCurrent reads the active version. It returns ErrNotFound before the
// first Save.
func (s *Store) GetCurrent() (Version, error) {
	id, err := s.activeID()
	if err != nil {
		return Version{}, err
	}
	return s.GetVersion(id)
}

func (s *Store) activeID() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT version_id FROM active_config WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get active: %w", err)
	}
	return id, nil
}

// #endregion get-current

// #region get-version
// GetVersion retrieves a specific version by ID.
func (s *Store) GetVersion(id string) (Version, error) {
	row := s.db.QueryRow(
		`SELECT v.version_id, v.parent_id, v.config_json, v.note, v.created_at,
		        COALESCE(a.version_id = v.version_id, 0)
		 FROM config_versions v LEFT JOIN active_config a ON a.id = 1
		 WHERE v.version_id = ?`, id,
	)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Version{}, fmt.Errorf("get version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Version{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return v, nil
}

// #endregion get-version

// #region rollback
// Rollback points the active pointer at an earlier version. History is kept.
func (s *Store) Rollback(id string) (Version, error) {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM config_versions WHERE version_id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return Version{}, fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return Version{}, fmt.Errorf("rollback %s: %w", id, ErrNotFound)
	}

	_, err = s.db.Exec(
		`INSERT INTO active_config (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		id,
	)
	if err != nil {
		return Version{}, fmt.Errorf("rollback: %w", err)
	}
	return s.GetVersion(id)
}

// #endregion rollback

// #region list-versions
// ListVersions returns up to limit versions, newest first.
func (s *Store) ListVersions(limit int) ([]Version, error) {
	rows, err := s.db.Query(
		`SELECT v.version_id, v.parent_id, v.config_json, v.note, v.created_at,
		        COALESCE(a.version_id = v.version_id, 0)
		 FROM config_versions v LEFT JOIN active_config a ON a.id = 1
		 ORDER BY v.seq DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []Version{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// #endregion list-versions

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanVersion(sc scanner) (Version, error) {
	var v Version
	var parentID, note sql.NullString
	var cfgJSON, createdStr string
	var active int

	if err := sc.Scan(&v.ID, &parentID, &cfgJSON, &note, &createdStr, &active); err != nil {
		return Version{}, err
	}
	v.ParentID = parentID.String
	v.Note = note.String
	v.Active = active == 1
	if err := json.Unmarshal([]byte(cfgJSON), &v.Config); err != nil {
		return Version{}, fmt.Errorf("unmarshal config: %w", err)
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return v, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
