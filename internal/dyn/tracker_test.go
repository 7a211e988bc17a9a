//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package dyn

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MHA535/turftopic/internal/emb"
	"github.com/MHA535/turftopic/internal/tm"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"
)

var corpus = []string{
	"rocket launch orbit satellite engine",
	"orbit satellite telescope planet moon",
	"rocket engine fuel launch pad",
	"planet moon orbit telescope star",
	"bread flour oven yeast dough",
	"oven bake bread cake sugar",
	"cake sugar butter flour bake",
	"dough yeast flour bread knead",
	"vote election senate law policy",
	"senate law court policy judge",
}

var keys = []int{3, 1, 2, 1, 3, 2, 1, 2, 3, 1}

func texts() []tm.Text {
	out := make([]tm.Text, len(corpus))
	for i, b := range corpus {
		out[i] = tm.Text{Body: b, Terms: strings.Fields(b)}
	}
	return out
}

func keynmf(t *testing.T, topics int) *tm.Model {
	t.Helper()
	s, err := tm.NewStrategy(tm.StratKeyNMF, topics)
	if err != nil {
		t.Fatal(err)
	}
	m, err := tm.NewModel(tm.Config{NTopics: topics, TopN: 10}, s, emb.NewStub(32))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSharedBasis_ConcatenationMatchesTransform(t *testing.T) {
	ctx := context.Background()
	m := keynmf(t, 3)
	if err := m.Fit(ctx, texts()); err != nil {
		t.Fatal(err)
	}
	tr := Tracker[int]{Mode: SharedBasis, Model: m}
	cur, err := tr.Bins(ctx, texts(), keys)
	if err != nil {
		t.Fatal(err)
	}
	bins, err := cur.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 3 || bins[0].Key != 1 || bins[2].Key != 3 {
		t.Fatalf("bins: %d, first key %v", len(bins), bins[0].Key)
	}
	want, err := m.Transform(ctx, ordered(texts(), keys))
	if err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(stack(bins), want, 1e-9) {
		t.Error("concatenated bins differ from Transform over the ordered corpus")
	}
	for _, b := range bins {
		r, c := b.TopicTerm.Dims()
		if r != 3 || c != len(m.Vocab()) {
			t.Errorf("bin %d topic-term is %dx%d", b.Key, r, c)
		}
		if len(b.Mean()) != 3 {
			t.Errorf("bin %d mean has %d entries", b.Key, len(b.Mean()))
		}
	}
}

func TestSharedBasis_FitFirstAndNotFitted(t *testing.T) {
	ctx := context.Background()
	tr := Tracker[int]{Mode: SharedBasis, Model: keynmf(t, 3)}
	if _, err := tr.Bins(ctx, texts(), keys); !errors.Is(err, tm.ErrNotFitted) {
		t.Errorf("unfitted model: %v", err)
	}
	tr.FitFirst = true
	cur, err := tr.Bins(ctx, texts(), keys)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Len() != 3 {
		t.Errorf("Len() = %d", cur.Len())
	}
}

func TestCursor_LazyAndRestartable(t *testing.T) {
	ctx := context.Background()
	m := keynmf(t, 2)
	if err := m.Fit(ctx, texts()); err != nil {
		t.Fatal(err)
	}
	tr := Tracker[int]{Mode: SharedBasis, Model: m}
	cur, err := tr.Bins(ctx, texts(), keys)
	if err != nil {
		t.Fatal(err)
	}
	first, ok, err := cur.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("Next: %v %v", ok, err)
	}
	if len(cur.done) != 1 {
		t.Errorf("%d bins computed after one Next", len(cur.done))
	}
	kept := mat.DenseCopyOf(first.DocTopic)
	first.DocTopic.Set(0, 0, -1)
	first.Rows[0] = 99

	cur.Reset()
	again, _, _ := cur.Next(ctx)
	if len(cur.done) != 1 {
		t.Error("a finished bin was recomputed")
	}
	if !mat.Equal(again.DocTopic, kept) || again.Rows[0] == 99 {
		t.Error("changing a returned bin changed the cached one")
	}
	first = again
	if len(first.Rows) != 4 || first.Rows[0] != 1 {
		t.Errorf("rows of key 1: %v", first.Rows)
	}
	for {
		_, ok, err := cur.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
	}
	if _, ok, _ := cur.Next(ctx); ok {
		t.Error("an exhausted cursor should stay exhausted")
	}
}

func TestIndependentRefit(t *testing.T) {
	ctx := context.Background()
	tr := Tracker[int]{Mode: IndependentRefit, Factory: func() (*tm.Model, error) {
		s, err := tm.NewStrategy(tm.StratKeyNMF, 2)
		if err != nil {
			return nil, err
		}
		return tm.NewModel(tm.Config{NTopics: 2, TopN: 10}, s, emb.NewStub(32))
	}}
	cur, err := tr.Bins(ctx, texts(), keys)
	if err != nil {
		t.Fatal(err)
	}
	bins, err := cur.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bins {
		r, c := b.TopicTerm.Dims()
		if r != 2 || c != len(b.Vocab) {
			t.Errorf("bin %d topic-term %dx%d with %d terms", b.Key, r, c, len(b.Vocab))
		}
		if n, _ := b.DocTopic.Dims(); n != len(b.Rows) {
			t.Errorf("bin %d has %d rows for %d documents", b.Key, n, len(b.Rows))
		}
	}
}

func TestBins_Validation(t *testing.T) {
	ctx := context.Background()
	tr := Tracker[int]{Mode: SharedBasis}
	if _, err := tr.Bins(ctx, texts(), keys[:3]); !errors.Is(err, ErrKeyCount) {
		t.Errorf("short keys: %v", err)
	}
	if _, err := tr.Bins(ctx, nil, nil); !errors.Is(err, tm.ErrEmptyBatch) {
		t.Errorf("no docs: %v", err)
	}
	if _, err := tr.Bins(ctx, texts(), keys); !errors.Is(err, ErrNoModel) {
		t.Errorf("no model: %v", err)
	}
}

func TestEqualWidthKeys(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	var ts []time.Time
	for _, s := range []int{0, 10, 20, 30, 40} {
		ts = append(ts, base.Add(time.Duration(s)*time.Second))
	}
	got := EqualWidthKeys(ts, 2)
	mid := base.Add(20 * time.Second).UnixNano()
	want := []int64{base.UnixNano(), base.UnixNano(), mid, mid, mid}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d = %d, want %d", i, got[i], want[i])
		}
	}
	same := EqualWidthKeys([]time.Time{base, base}, 4)
	if same[0] != same[1] {
		t.Error("identical timestamps should share a bin")
	}
}

func TestEqualWidthKeys_SubSecondBins(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	var ts []time.Time
	for i := 0; i < 10; i++ {
		ts = append(ts, base.Add(time.Duration(i)*500*time.Millisecond))
	}
	got := EqualWidthKeys(ts, 10)
	seen := make(map[int64]bool)
	for _, k := range got {
		seen[k] = true
	}
	if len(seen) != 10 {
		t.Errorf("10 bins over 4.5s gave %d distinct keys", len(seen))
	}
	if got[0] != base.UnixNano() {
		t.Errorf("first key = %d, want %d", got[0], base.UnixNano())
	}
}

func TestTruncateKeys(t *testing.T) {
	a := time.Date(2021, 3, 4, 13, 45, 0, 0, time.UTC)
	b := time.Date(2021, 3, 4, 2, 0, 0, 0, time.UTC)
	got := TruncateKeys([]time.Time{a, b}, 24*time.Hour)
	if got[0] != got[1] {
		t.Errorf("same day, different keys: %v", got)
	}
}

// stack - the document-topic rows of the bins, one after the other
func stack[K constraints.Ordered](bins []Bin[K]) *mat.Dense {
	n, t := 0, 0
	for _, b := range bins {
		r, c := b.DocTopic.Dims()
		n += r
		t = c
	}
	if n == 0 {
		return nil
	}
	out := mat.NewDense(n, t, nil)
	at := 0
	for _, b := range bins {
		r, _ := b.DocTopic.Dims()
		out.Slice(at, at+r, 0, t).(*mat.Dense).Copy(b.DocTopic)
		at += r
	}
	return out
}
