//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package kw

import (
	"errors"
	"math"
	"testing"
)

func TestExtract_EmptyPool(t *testing.T) {
	got, err := Extract([]float64{1, 0}, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", got)
	}
}

func TestExtract_DropsNegativeAndOrders(t *testing.T) {
	doc := []float64{1, 0}
	pool := []Candidate{
		{Term: "opposite", Vector: []float64{-1, 0}},
		{Term: "close", Vector: []float64{1, 0.1}},
		{Term: "exact", Vector: []float64{2, 0}},
		{Term: "orthogonal", Vector: []float64{0, 1}},
		{Term: "far", Vector: []float64{1, 1}},
	}
	got, err := Extract(doc, pool, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"exact", "close", "far"}
	if len(got) != len(want) {
		t.Fatalf("got %d keywords, want %d: %#v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Term != want[i] {
			t.Errorf("position %d: got %q want %q", i, got[i].Term, want[i])
		}
		if got[i].Weight <= 0 {
			t.Errorf("non-positive weight for %q", got[i].Term)
		}
	}
	if math.Abs(got[0].Weight-1) > 1e-12 {
		t.Errorf("exact match should have similarity 1, got %v", got[0].Weight)
	}
}

func TestExtract_TopNBound(t *testing.T) {
	doc := []float64{1, 1}
	pool := []Candidate{
		{Term: "a", Vector: []float64{1, 0}},
		{Term: "b", Vector: []float64{0, 1}},
		{Term: "c", Vector: []float64{1, 1}},
	}
	got, err := Extract(doc, pool, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(got))
	}
	if got[0].Term != "c" || got[1].Term != "a" {
		t.Errorf("unexpected order %#v (ties should keep pool order)", got)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	doc := []float64{0.3, 0.5, 0.2}
	pool := []Candidate{
		{Term: "x", Vector: []float64{0.1, 0.9, 0}},
		{Term: "y", Vector: []float64{0.4, 0.4, 0.4}},
		{Term: "z", Vector: []float64{0.9, 0, 0.1}},
	}
	a, _ := Extract(doc, pool, 0)
	b, _ := Extract(doc, pool, 0)
	if len(a) != len(b) {
		t.Fatal("lengths differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("run differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtract_DimensionMismatch(t *testing.T) {
	_, err := Extract([]float64{1, 0}, []Candidate{{Term: "bad", Vector: []float64{1, 0, 0}}}, 3)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	got := Normalize([]float64{0, 0})
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("zero vector should stay zero: %v", got)
	}
	kk, err := Extract([]float64{0, 0}, []Candidate{{Term: "a", Vector: []float64{1, 0}}}, 0)
	if err != nil || len(kk) != 0 {
		t.Errorf("a zero document should match nothing: %v %v", kk, err)
	}
}
