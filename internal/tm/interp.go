//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MHA535/turftopic/internal/vv"
	"gonum.org/v1/gonum/mat"
)

//
// INTERPRETATION
//

// TermScore - a term and its weight in one topic
type TermScore struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Topic - the most (or least) important terms of one topic
type Topic struct {
	ID    int         `json:"id"`
	Terms []TermScore `json:"terms"`
}

// DocScore - a document index and its weight in one topic
type DocScore struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// TopTerms - the k highest scoring terms of every topic
func (m *Model) TopTerms(k int) ([]Topic, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	return TopTermsOf(m.strategy.TopicTermMatrix(), m.vocab.Terms(), k, false)
}

// LowestTerms - the k lowest scoring terms of every topic; the negative pole of a signed axis
func (m *Model) LowestTerms(k int) ([]Topic, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	return TopTermsOf(m.strategy.TopicTermMatrix(), m.vocab.Terms(), k, true)
}

// TopicNames - "<id>_<w1>_<w2>_<w3>_<w4>" for every topic
func (m *Model) TopicNames() ([]string, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	return TopicNamesOf(m.strategy.TopicTermMatrix(), m.vocab.Terms())
}

// TopicDistribution - the topic vector of a single text
func (m *Model) TopicDistribution(ctx context.Context, t Text) ([]float64, error) {
	dt, err := m.Transform(ctx, []Text{t})
	if err != nil {
		return nil, err
	}
	return mat.Row(nil, 0, dt), nil
}

// TopTermsOf - top (or, with lowest set, bottom) k terms per row of a T x V matrix
//
// k <= 0 means every term. Ties keep vocabulary order.
func TopTermsOf(tt mat.Matrix, terms []string, k int, lowest bool) ([]Topic, error) {
	const (
		FAIL1 = "%w: topic-term matrix has %d columns but the vocabulary %d terms"
	)
	if d, ok := tt.(*mat.Dense); tt == nil || (ok && d == nil) {
		return nil, ErrNotFitted
	}
	t, v := tt.Dims()
	if v != len(terms) {
		return nil, fmt.Errorf(FAIL1, ErrDimensionMismatch, v, len(terms))
	}
	if k <= 0 || k > v {
		k = v
	}

	out := make([]Topic, t)
	idx := make([]int, v)
	for c := 0; c < t; c++ {
		row := mat.Row(nil, c, tt)
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, b int) bool {
			if lowest {
				return row[idx[a]] < row[idx[b]]
			}
			return row[idx[a]] > row[idx[b]]
		})
		ts := make([]TermScore, k)
		for j := 0; j < k; j++ {
			ts[j] = TermScore{Term: terms[idx[j]], Score: row[idx[j]]}
		}
		out[c] = Topic{ID: c, Terms: ts}
	}
	return out, nil
}

// TopicNamesOf - the default label of every row of a topic-term matrix
func TopicNamesOf(tt mat.Matrix, terms []string) ([]string, error) {
	top, err := TopTermsOf(tt, terms, vv.DEFAULTNAMETERMS, false)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(top))
	for i, tp := range top {
		parts := make([]string, 0, len(tp.Terms)+1)
		parts = append(parts, strconv.Itoa(tp.ID))
		for _, ts := range tp.Terms {
			parts = append(parts, ts.Term)
		}
		names[i] = strings.Join(parts, "_")
	}
	return names, nil
}

// RankDocuments - the k documents with the highest weight in topic; k <= 0 means all of them
func RankDocuments(docTopic mat.Matrix, topic int, k int) ([]DocScore, error) {
	if d, ok := docTopic.(*mat.Dense); docTopic == nil || (ok && d == nil) {
		return nil, ErrNotFitted
	}
	n, t := docTopic.Dims()
	if topic < 0 || topic >= t {
		return nil, fmt.Errorf("%w: topic %d of %d", ErrInvalidTopicCount, topic, t)
	}
	ds := make([]DocScore, n)
	for i := 0; i < n; i++ {
		ds[i] = DocScore{Index: i, Score: docTopic.At(i, topic)}
	}
	sort.SliceStable(ds, func(a, b int) bool { return ds[a].Score > ds[b].Score })
	if k > 0 && k < n {
		ds = ds[:k]
	}
	return ds, nil
}
