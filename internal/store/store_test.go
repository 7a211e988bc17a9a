//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MHA535/turftopic/internal/emb"
	"github.com/MHA535/turftopic/internal/tm"
)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "tt.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func fakeSnapshot() tm.Snapshot {
	return tm.Snapshot{
		Created:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Strategy:       tm.StratKeyNMF,
		StrategyConfig: []byte(`{"ntopics":2}`),
		Config:         tm.Config{NTopics: 2, TopN: 5},
		Vocab:          []string{"rocket", "bread", "vote"},
		TopicTerm:      tm.Matrix{Rows: 2, Cols: 3, Data: []float64{0.5, 0, 0.1, 0, 0.7, 0.2}},
		DocTopic:       tm.Matrix{Rows: 1, Cols: 2, Data: []float64{0.25, 0.75}},
		Batches:        1,
	}
}

func TestSQLite_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	id, err := s.Save(ctx, fakeSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("no id assigned")
	}

	back, err := s.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if back.ID != id || back.Strategy != tm.StratKeyNMF || len(back.Vocab) != 3 {
		t.Errorf("loaded %+v", back)
	}
	for i, v := range fakeSnapshot().TopicTerm.Data {
		if back.TopicTerm.Data[i] != v {
			t.Errorf("topic-term value %d: %v vs %v", i, back.TopicTerm.Data[i], v)
		}
	}
	if _, err := tm.Restore(back); err != nil {
		t.Errorf("restore: %v", err)
	}

	second := fakeSnapshot()
	second.Created = second.Created.Add(time.Hour)
	if _, err := s.Save(ctx, second); err != nil {
		t.Fatal(err)
	}
	ml, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ml) != 2 || ml[0].ID != id || ml[0].NTopics != 2 || ml[0].Vocab != 3 || ml[0].Size == 0 {
		t.Errorf("list %+v", ml)
	}
	if !ml[0].Created.Before(ml[1].Created) {
		t.Error("list should be oldest first")
	}

	if _, err := s.Load(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: %v", err)
	}
}

func TestSQLite_VectorCache(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if _, ok, err := s.GetVector(ctx, "k"); ok || err != nil {
		t.Fatalf("empty cache: %v %v", ok, err)
	}
	if err := s.PutVector(ctx, "k", []float64{1, -2.5, 3}); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.GetVector(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if len(v) != 3 || v[1] != -2.5 {
		t.Errorf("got %v", v)
	}
}

func TestSQLite_BacksTheEncoderCache(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	first := emb.NewCached(emb.NewStub(8), "stub", s)
	a, err := first.Encode(ctx, []string{"hello world"})
	if err != nil {
		t.Fatal(err)
	}

	// a fresh in-memory cache finds the vector on disk
	second := emb.NewCached(emb.NewStub(8), "stub", s)
	b, err := second.Encode(ctx, []string{"hello world"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Hits != 1 || second.Miss != 0 {
		t.Errorf("hits %d miss %d", second.Hits, second.Miss)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("persisted vector differs")
		}
	}
}
