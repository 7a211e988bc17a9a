//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MHA535/turftopic/internal/tm"
	_ "modernc.org/sqlite"
)

// SQLite - snapshots and the embedding cache in one local file
type SQLite struct {
	db *sql.DB
}

// OpenSQLite - open (or create) the database at path; ":memory:" works too
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	const (
		DRIVER = "sqlite"
		SNAP   = `
			CREATE TABLE IF NOT EXISTS %s
			(
			  id        TEXT PRIMARY KEY,
			  created   TEXT,
			  strategy  TEXT,
			  ntopics   INTEGER,
			  vocabsize INTEGER,
			  batches   INTEGER,
			  datasize  INTEGER,
			  snapdata  BLOB
			)`
		EMB = `
			CREATE TABLE IF NOT EXISTS %s
			(
			  key        TEXT PRIMARY KEY,
			  vectordata BLOB
			)`
		MSG1 = "OpenSQLite(): %s"
	)

	db, err := sql.Open(DRIVER, path)
	if err != nil {
		return nil, err
	}
	// one writer; avoids SQLITE_BUSY between the cache and the snapshots
	db.SetMaxOpenConns(1)

	for _, ex := range []string{fmt.Sprintf(SNAP, SNAPTABLE), fmt.Sprintf(EMB, EMBTABLE)} {
		if _, err := db.ExecContext(ctx, ex); err != nil {
			db.Close()
			return nil, err
		}
	}
	Msg.TMI(fmt.Sprintf(MSG1, path))
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Save - store the snapshot; returns its id
func (s *SQLite) Save(ctx context.Context, snap tm.Snapshot) (string, error) {
	const (
		INS = `
			INSERT OR REPLACE INTO %s
				(id, created, strategy, ntopics, vocabsize, batches, datasize, snapdata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		MSG1 = "SQLite.Save(): %s (%d bytes)"
	)
	b, err := prepare(&snap)
	if err != nil {
		return "", err
	}
	ex := fmt.Sprintf(INS, SNAPTABLE)
	_, err = s.db.ExecContext(ctx, ex, snap.ID, snap.Created.Format(time.RFC3339Nano), snap.Strategy,
		snap.Config.NTopics, len(snap.Vocab), snap.Batches, len(b), b)
	if err != nil {
		return "", err
	}
	Msg.TMI(fmt.Sprintf(MSG1, snap.ID, len(b)))
	return snap.ID, nil
}

// Load - fetch a snapshot by id
func (s *SQLite) Load(ctx context.Context, id string) (tm.Snapshot, error) {
	const (
		Q = `SELECT snapdata FROM %s WHERE id = ? LIMIT 1`
	)
	var b []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(Q, SNAPTABLE), id).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return tm.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return tm.Snapshot{}, err
	}
	var snap tm.Snapshot
	if err := unpack(b, &snap); err != nil {
		return tm.Snapshot{}, err
	}
	return snap, nil
}

// List - every stored snapshot, oldest first
func (s *SQLite) List(ctx context.Context) ([]Meta, error) {
	const (
		Q = `SELECT id, created, strategy, ntopics, vocabsize, batches, datasize FROM %s ORDER BY created`
	)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(Q, SNAPTABLE))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		var created string
		if err := rows.Scan(&m.ID, &created, &m.Strategy, &m.NTopics, &m.Vocab, &m.Batches, &m.Size); err != nil {
			return nil, err
		}
		m.Created, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetVector - a cached embedding
func (s *SQLite) GetVector(ctx context.Context, key string) ([]float64, bool, error) {
	const (
		Q = `SELECT vectordata FROM %s WHERE key = ? LIMIT 1`
	)
	var b []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(Q, EMBTABLE), key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v []float64
	if err := unpack(b, &v); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// PutVector - cache an embedding
func (s *SQLite) PutVector(ctx context.Context, key string, v []float64) error {
	const (
		INS = `INSERT OR REPLACE INTO %s (key, vectordata) VALUES (?, ?)`
	)
	b, err := pack(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(INS, EMBTABLE), key, b)
	return err
}
