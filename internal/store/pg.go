//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MHA535/turftopic/internal/str"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG - snapshots and the embedding cache in postgres
type PG struct {
	pool *pgxpool.Pool
}

// OpenPG - build the pgxpool and make sure the tables exist
func OpenPG(ctx context.Context, pl str.PostgresLogin) (*PG, error) {
	const (
		UTPL    = "postgres://%s:%s@%s:%d/%s?pool_min_conns=1&pool_max_conns=4"
		FAIL1   = "configuration error: could not parse the connection string for %s@%s:%d/%s: %w"
		ERRRUN  = `dial error`
		FAILRUN = `the PostgreSQL server cannot be found; check that it is running and serving on port %d`
		SNAP    = `
			CREATE TABLE IF NOT EXISTS %s
			(
			  id        text PRIMARY KEY,
			  created   timestamptz,
			  strategy  text,
			  ntopics   int,
			  vocabsize int,
			  batches   int,
			  datasize  int,
			  snapdata  bytea
			)`
		EMB = `
			CREATE TABLE IF NOT EXISTS %s
			(
			  key        character(64) PRIMARY KEY,
			  vectordata bytea
			)`
	)

	url := fmt.Sprintf(UTPL, pl.User, pl.Pass, pl.Host, pl.Port, pl.DBName)
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf(FAIL1, pl.User, pl.Host, pl.Port, pl.DBName, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	for _, ex := range []string{fmt.Sprintf(SNAP, SNAPTABLE), fmt.Sprintf(EMB, EMBTABLE)} {
		if _, err := pool.Exec(ctx, ex); err != nil {
			pool.Close()
			if strings.Contains(err.Error(), ERRRUN) {
				Msg.MAND(fmt.Sprintf(FAILRUN, pl.Port))
			}
			return nil, err
		}
	}
	return &PG{pool: pool}, nil
}

func (p *PG) Close() error {
	p.pool.Close()
	return nil
}

func (p *PG) Save(ctx context.Context, snap tm.Snapshot) (string, error) {
	const (
		INS = `
			INSERT INTO %s
				(id, created, strategy, ntopics, vocabsize, batches, datasize, snapdata)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET snapdata = EXCLUDED.snapdata, datasize = EXCLUDED.datasize`
	)
	b, err := prepare(&snap)
	if err != nil {
		return "", err
	}
	_, err = p.pool.Exec(ctx, fmt.Sprintf(INS, SNAPTABLE), snap.ID, snap.Created, snap.Strategy,
		snap.Config.NTopics, len(snap.Vocab), snap.Batches, len(b), b)
	if err != nil {
		return "", err
	}
	return snap.ID, nil
}

func (p *PG) Load(ctx context.Context, id string) (tm.Snapshot, error) {
	const (
		Q = `SELECT snapdata FROM %s WHERE id = $1 LIMIT 1`
	)
	var b []byte
	err := p.pool.QueryRow(ctx, fmt.Sprintf(Q, SNAPTABLE), id).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return tm.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return tm.Snapshot{}, err
	}
	var snap tm.Snapshot
	err = unpack(b, &snap)
	return snap, err
}

func (p *PG) List(ctx context.Context) ([]Meta, error) {
	const (
		Q = `SELECT id, created, strategy, ntopics, vocabsize, batches, datasize FROM %s ORDER BY created`
	)
	rows, err := p.pool.Query(ctx, fmt.Sprintf(Q, SNAPTABLE))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[Meta])
}

func (p *PG) GetVector(ctx context.Context, key string) ([]float64, bool, error) {
	const (
		Q = `SELECT vectordata FROM %s WHERE key = $1 LIMIT 1`
	)
	var b []byte
	err := p.pool.QueryRow(ctx, fmt.Sprintf(Q, EMBTABLE), key).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *PG) PutVector(ctx context.Context, key string, v []float64) error {
	const (
		INS = `INSERT INTO %s (key, vectordata) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
	)
	b, err := pack(v)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, fmt.Sprintf(INS, EMBTABLE), key, b)
	return err
}
