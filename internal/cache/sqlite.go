package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/sable-lang/sable/internal/infer"
)

// SQLiteStore keeps the whole cache in one database file. Useful where a
// directory of loose files is awkward, e.g. a shared CI cache artefact.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS modules (
		name        TEXT PRIMARY KEY,
		fingerprint INTEGER NOT NULL,
		payload     BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(module string, fp Fingerprint) (*infer.TypedModule, bool) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM modules WHERE name = ?`, module).Scan(&payload)
	if err != nil {
		return nil, false
	}
	storedFp, typed, err := Decode(payload)
	if err != nil || storedFp != fp {
		return nil, false
	}
	return typed, true
}

func (s *SQLiteStore) Save(module string, fp Fingerprint, typed *infer.TypedModule) error {
	_, err := s.db.Exec(
		`INSERT INTO modules (name, fingerprint, payload) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET fingerprint = excluded.fingerprint, payload = excluded.payload`,
		module, int64(fp), Encode(fp, typed),
	)
	if err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clean() error {
	if _, err := s.db.Exec(`DELETE FROM modules`); err != nil {
		return fmt.Errorf("clean cache db: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
