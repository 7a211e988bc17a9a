//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/MHA535/turftopic/internal/tm"
)

func TestTerms_CountsAndStops(t *testing.T) {
	docs := []string{
		"the rocket and the orbit",
		"orbit orbit moon",
	}
	got, err := Terms(docs, DefaultStops())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got[0], []string{"orbit", "rocket"}) {
		t.Errorf("doc 0: %v", got[0])
	}
	if !reflect.DeepEqual(got[1], []string{"moon", "orbit", "orbit"}) {
		t.Errorf("doc 1: %v", got[1])
	}
}

func TestTerms_NoTexts(t *testing.T) {
	if _, err := Terms(nil, nil); !errors.Is(err, ErrNoTexts) {
		t.Errorf("got %v", err)
	}
}

func TestCandidates_Prunes(t *testing.T) {
	docs := []string{
		"orbit rocket moon star planet",
		"orbit bread",
		"orbit cake",
	}
	got, err := Candidates(docs, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, d := range got {
		if len(d) > 2 {
			t.Errorf("doc %d kept %d terms: %v", i, len(d), d)
		}
	}
	// "orbit" is everywhere, so it is the least distinctive term of doc 1
	if !reflect.DeepEqual(got[1], []string{"bread", "orbit"}) && !reflect.DeepEqual(got[1], []string{"bread"}) {
		t.Errorf("doc 1: %v", got[1])
	}
	all, _ := Candidates(docs, nil, 0)
	if len(all[0]) != 5 {
		t.Errorf("maxPerDoc 0 should keep everything, got %v", all[0])
	}
}

func TestReadStops(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "stops.json")
	if err := os.WriteFile(fn, []byte(`["foo", "bar"]`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadStops(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"foo", "bar"}) {
		t.Errorf("got %v", got)
	}
	if err := os.WriteFile(fn, []byte(`{`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadStops(fn); err == nil {
		t.Error("malformed file should fail")
	}
}

func TestDefaultStops_Sorted(t *testing.T) {
	s := DefaultStops()
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			t.Fatalf("not sorted or repeated at %d: %q %q", i, s[i-1], s[i])
		}
	}
}

func TestTexts_KeepsBodies(t *testing.T) {
	got, err := Texts([]string{"the rocket and the orbit", "moon"}, DefaultStops(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Body != "the rocket and the orbit" {
		t.Fatalf("got %+v", got)
	}
	if !reflect.DeepEqual(got[0].Terms, []string{"orbit", "rocket"}) {
		t.Errorf("terms %v", got[0].Terms)
	}
	if _, err := Texts(nil, nil, 0); !errors.Is(err, tm.ErrEmptyBatch) {
		t.Errorf("no bodies: %v", err)
	}
}
