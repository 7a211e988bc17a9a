//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package kw

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

//
// KEYWORD EXTRACTION
//

var ErrDimensionMismatch = errors.New("candidate and document dimensionality differ")

// Candidate - a term that may describe a document
type Candidate struct {
	Term   string
	Vector []float64
}

// Keyword - a selected term and its (positive) similarity to the document
type Keyword struct {
	Term   string
	Weight float64
}

// Extract - the topN candidates most similar to doc; non-positive similarities never make the cut
//
// topN <= 0 keeps every positive candidate. An empty pool yields an empty, non-nil result.
// Ties keep pool order, so the result depends only on the inputs.
func Extract(doc []float64, pool []Candidate, topN int) ([]Keyword, error) {
	const (
		FAIL1 = "%w: candidate %q has %d dimensions, document %d"
	)

	out := make([]Keyword, 0, len(pool))
	if len(pool) == 0 {
		return out, nil
	}
	dn := floats.Norm(doc, 2)

	for _, c := range pool {
		if len(c.Vector) != len(doc) {
			return nil, fmt.Errorf(FAIL1, ErrDimensionMismatch, c.Term, len(c.Vector), len(doc))
		}
		s := similarity(doc, dn, c.Vector)
		if s > 0 {
			out = append(out, Keyword{Term: c.Term, Weight: s})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

// Normalize - a unit-length copy of v; a zero vector is returned as zeros
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	if n := floats.Norm(out, 2); n > 0 {
		floats.Scale(1/n, out)
	}
	return out
}

func similarity(a []float64, an float64, b []float64) float64 {
	bn := floats.Norm(b, 2)
	if an == 0 || bn == 0 {
		return 0
	}
	return floats.Dot(a, b) / (an * bn)
}
