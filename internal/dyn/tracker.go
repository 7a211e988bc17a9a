//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package dyn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/tm"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

var (
	Msg = mm.NewMessageMaker()

	ErrKeyCount = errors.New("every document needs exactly one key")
	ErrNoModel  = errors.New("tracker has no model")
)

//
// DYNAMIC TOPICS
//

type Mode int

const (
	// SharedBasis - one fitted model; every bin is a Transform, so topic k means the same thing in every bin
	SharedBasis Mode = iota
	// IndependentRefit - a fresh model per bin; topic k in one bin has nothing to do with topic k in the next
	IndependentRefit
)

func (m Mode) String() string {
	switch m {
	case SharedBasis:
		return "shared"
	case IndependentRefit:
		return "independent"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Tracker - slices a corpus by an ordered key and describes every slice
type Tracker[K constraints.Ordered] struct {
	Mode     Mode
	Model    *tm.Model                 // SharedBasis
	FitFirst bool                      // SharedBasis: fit Model on the whole corpus before slicing
	Factory  func() (*tm.Model, error) // IndependentRefit
}

// Bin - one slice of the corpus; never modified after the cursor hands it out
type Bin[K constraints.Ordered] struct {
	Key       K
	Rows      []int      // indices into the corpus given to Bins
	DocTopic  *mat.Dense // len(Rows) x T
	TopicTerm *mat.Dense // T x len(Vocab)
	Vocab     []string
}

// clone - a Bin that shares nothing with b
func (b Bin[K]) clone() Bin[K] {
	out := Bin[K]{Key: b.Key, Rows: slices.Clone(b.Rows), Vocab: slices.Clone(b.Vocab)}
	if b.DocTopic != nil {
		out.DocTopic = mat.DenseCopyOf(b.DocTopic)
	}
	if b.TopicTerm != nil {
		out.TopicTerm = mat.DenseCopyOf(b.TopicTerm)
	}
	return out
}

// Mean - the average topic weight of the documents in the bin
func (b Bin[K]) Mean() []float64 {
	r, c := b.DocTopic.Dims()
	out := make([]float64, c)
	for j := 0; j < c; j++ {
		out[j] = mat.Sum(b.DocTopic.ColView(j)) / float64(r)
	}
	return out
}

// Bins - group docs by key and return a cursor over the groups in ascending key order
func (t *Tracker[K]) Bins(ctx context.Context, docs []tm.Text, keys []K) (*Cursor[K], error) {
	const (
		FAIL1 = "%w: %d documents, %d keys"
		MSG1  = "dyn: %d documents in %d bins (%s)"
	)
	if len(docs) != len(keys) {
		return nil, fmt.Errorf(FAIL1, ErrKeyCount, len(docs), len(keys))
	}
	if len(docs) == 0 {
		return nil, tm.ErrEmptyBatch
	}

	switch t.Mode {
	case SharedBasis:
		if t.Model == nil {
			return nil, ErrNoModel
		}
		if t.FitFirst {
			if err := t.Model.Fit(ctx, ordered(docs, keys)); err != nil {
				return nil, err
			}
		} else if !t.Model.Fitted() {
			return nil, tm.ErrNotFitted
		}
	case IndependentRefit:
		if t.Factory == nil {
			return nil, ErrNoModel
		}
	default:
		return nil, fmt.Errorf("%w: tracker mode %s", tm.ErrUnsupported, t.Mode)
	}

	uk := slices.Clone(keys)
	slices.Sort(uk)
	uk = slices.Compact(uk)

	pos := make(map[K]int, len(uk))
	for i, k := range uk {
		pos[k] = i
	}
	rows := make([][]int, len(uk))
	for i, k := range keys {
		rows[pos[k]] = append(rows[pos[k]], i)
	}

	Msg.PEEK(fmt.Sprintf(MSG1, len(docs), len(uk), t.Mode))
	return &Cursor[K]{t: t, docs: docs, keys: uk, rows: rows}, nil
}

// ordered - the corpus stably sorted by key
func ordered[K constraints.Ordered](docs []tm.Text, keys []K) []tm.Text {
	idx := make([]int, len(docs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case keys[a] < keys[b]:
			return -1
		case keys[a] > keys[b]:
			return 1
		default:
			return 0
		}
	})
	out := make([]tm.Text, len(docs))
	for i, j := range idx {
		out[i] = docs[j]
	}
	return out
}

//
// CURSOR
//

// Cursor - computes bins lazily, in key order; bins already computed are kept
type Cursor[K constraints.Ordered] struct {
	t    *Tracker[K]
	docs []tm.Text
	keys []K
	rows [][]int
	done []Bin[K]
	pos  int
}

// Len - the number of bins
func (c *Cursor[K]) Len() int { return len(c.keys) }

// Keys - the bin keys in order
func (c *Cursor[K]) Keys() []K { return slices.Clone(c.keys) }

// Next - the next bin, a copy the caller may change; false once the sequence is exhausted
func (c *Cursor[K]) Next(ctx context.Context) (Bin[K], bool, error) {
	if c.pos >= len(c.keys) {
		return Bin[K]{}, false, nil
	}
	if c.pos < len(c.done) {
		b := c.done[c.pos].clone()
		c.pos++
		return b, true, nil
	}
	if err := ctx.Err(); err != nil {
		return Bin[K]{}, false, err
	}
	b, err := c.compute(ctx, c.pos)
	if err != nil {
		return Bin[K]{}, false, err
	}
	c.done = append(c.done, b)
	c.pos++
	return b.clone(), true, nil
}

// Reset - start again from the first bin
func (c *Cursor[K]) Reset() { c.pos = 0 }

// All - every bin from the first
func (c *Cursor[K]) All(ctx context.Context) ([]Bin[K], error) {
	c.Reset()
	out := make([]Bin[K], 0, len(c.keys))
	for {
		b, ok, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, b)
	}
}

func (c *Cursor[K]) compute(ctx context.Context, i int) (Bin[K], error) {
	const (
		FAIL1 = "bin %v: %w"
		MSG1  = "dyn: bin %v has %d documents"
	)
	rows := c.rows[i]
	sub := make([]tm.Text, len(rows))
	for j, r := range rows {
		sub[j] = c.docs[r]
	}

	b := Bin[K]{Key: c.keys[i], Rows: slices.Clone(rows)}
	switch c.t.Mode {
	case IndependentRefit:
		m, err := c.t.Factory()
		if err != nil {
			return Bin[K]{}, fmt.Errorf(FAIL1, b.Key, err)
		}
		if b.DocTopic, err = m.FitTransform(ctx, sub); err != nil {
			return Bin[K]{}, fmt.Errorf(FAIL1, b.Key, err)
		}
		b.TopicTerm = m.TopicTermMatrix()
		b.Vocab = m.Vocab()
	default:
		var err error
		if b.DocTopic, b.TopicTerm, err = c.t.Model.TransformProfile(ctx, sub); err != nil {
			return Bin[K]{}, fmt.Errorf(FAIL1, b.Key, err)
		}
		b.Vocab = c.t.Model.Vocab()
	}
	Msg.TMI(fmt.Sprintf(MSG1, b.Key, len(rows)))
	return b, nil
}

//
// KEYS FROM TIMESTAMPS
//

// EqualWidthKeys - n equal-width buckets between the earliest and latest timestamp; the key is the bucket start in Unix nanoseconds
func EqualWidthKeys(ts []time.Time, n int) []int64 {
	out := make([]int64, len(ts))
	if len(ts) == 0 {
		return out
	}
	if n < 1 {
		n = 1
	}
	lo, hi := ts[0], ts[0]
	for _, t := range ts {
		if t.Before(lo) {
			lo = t
		}
		if t.After(hi) {
			hi = t
		}
	}
	span := hi.Sub(lo)
	if span == 0 {
		for i := range out {
			out[i] = lo.UnixNano()
		}
		return out
	}
	width := float64(span) / float64(n)
	for i, t := range ts {
		b := int(math.Floor(float64(t.Sub(lo)) / width))
		if b >= n {
			b = n - 1
		}
		out[i] = lo.Add(time.Duration(float64(b) * width)).UnixNano()
	}
	return out
}

// TruncateKeys - the start of each timestamp's d-long bucket in Unix nanoseconds
func TruncateKeys(ts []time.Time, d time.Duration) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.Truncate(d).UnixNano()
	}
	return out
}
