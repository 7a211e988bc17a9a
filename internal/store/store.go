//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/google/uuid"
)

var (
	Msg         = mm.NewMessageMaker()
	ErrNotFound = errors.New("no such snapshot")
)

const (
	SNAPTABLE = "snapshots"
	EMBTABLE  = "embcache"
)

// Store - somewhere to keep fitted models between runs
type Store interface {
	Save(ctx context.Context, s tm.Snapshot) (string, error)
	Load(ctx context.Context, id string) (tm.Snapshot, error)
	List(ctx context.Context) ([]Meta, error)
	Close() error
}

// Meta - what List reports about a stored snapshot
type Meta struct {
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	Strategy string    `json:"strategy"`
	NTopics  int       `json:"ntopics"`
	Vocab    int       `json:"vocab"`
	Batches  int       `json:"batches"`
	Size     int       `json:"size"`
}

// prepare - give the snapshot an id if it lacks one and return its compressed form
func prepare(s *tm.Snapshot) ([]byte, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Created.IsZero() {
		s.Created = time.Now()
	}
	return pack(s)
}

// pack - json then gzip
func pack(v any) ([]byte, error) {
	const (
		GZ = gzip.BestSpeed
	)
	eb, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, GZ)
	if err != nil {
		return nil, err
	}
	if _, err = zw.Write(eb); err != nil {
		return nil, err
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unpack - the data in the tables is zipped and needs unzipping
func unpack(b []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer zr.Close()
	decompr, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	return json.Unmarshal(decompr, v)
}
