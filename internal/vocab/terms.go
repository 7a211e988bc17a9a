//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package vocab

import (
	"errors"
	"fmt"
	"sort"

	"github.com/MHA535/turftopic/internal/gen"
	"github.com/MHA535/turftopic/internal/mm"
	"github.com/e-gun/nlp"
	"gonum.org/v1/gonum/mat"
)

var (
	Msg = mm.NewMessageMaker()

	ErrNoTexts = errors.New("no texts to vectorise")
)

//
// CANDIDATE TERMS
//

// nonZeroer - the sparse matrices the vectoriser returns can walk their own entries
type nonZeroer interface {
	DoNonZero(fn func(i, j int, v float64))
}

// Terms - the candidate terms of every text, with repetition, in vocabulary order
func Terms(texts []string, stops []string) ([][]string, error) {
	counts, _, _, err := countMatrix(texts, stops)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(texts))
	for j, c := range counts {
		for _, t := range gen.SortedKeys(c) {
			for k := 0; k < int(c[t]); k++ {
				out[j] = append(out[j], t)
			}
		}
	}
	return out, nil
}

// Candidates - Terms, but each text keeps only its maxPerDoc best terms by tf-idf; maxPerDoc <= 0 keeps all
func Candidates(texts []string, stops []string, maxPerDoc int) ([][]string, error) {
	const (
		FAIL1 = "tf-idf weighting failed: %w"
		MSG1  = "Candidates(): %d texts, %d distinct terms, at most %d kept per text"
	)
	if maxPerDoc <= 0 {
		return Terms(texts, stops)
	}

	counts, tdm, names, err := countMatrix(texts, stops)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return make([][]string, len(texts)), nil
	}
	tfidf := nlp.NewTfidfTransformer()
	weighted, err := tfidf.FitTransform(tdm)
	if err != nil {
		return nil, fmt.Errorf(FAIL1, err)
	}
	w := byDocument(weighted, names)

	out := make([][]string, len(texts))
	for j := range texts {
		keep := gen.SortedKeys(w[j])
		sort.SliceStable(keep, func(a, b int) bool { return w[j][keep[a]] > w[j][keep[b]] })
		if len(keep) > maxPerDoc {
			keep = keep[:maxPerDoc]
		}
		sort.Strings(keep)
		for _, t := range keep {
			for k := 0; k < int(counts[j][t]); k++ {
				out[j] = append(out[j], t)
			}
		}
	}
	Msg.PEEK(fmt.Sprintf(MSG1, len(texts), len(names), maxPerDoc))
	return out, nil
}

// countMatrix - per-text term counts, the raw terms x docs matrix and the term of every matrix row
func countMatrix(texts []string, stops []string) ([]map[string]float64, mat.Matrix, []string, error) {
	const (
		FAIL1 = "vectoriser failed: %w"
	)
	if len(texts) == 0 {
		return nil, nil, nil, ErrNoTexts
	}
	out := make([]map[string]float64, len(texts))
	for i := range out {
		out[i] = make(map[string]float64)
	}

	vectoriser := nlp.NewCountVectoriser(stops...)
	tdm, err := vectoriser.FitTransform(texts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf(FAIL1, err)
	}
	if len(vectoriser.Vocabulary) == 0 {
		return out, tdm, nil, nil
	}

	names := make([]string, len(vectoriser.Vocabulary))
	for k, v := range vectoriser.Vocabulary {
		names[v] = k
	}
	walk(tdm, func(term, doc int, v float64) {
		out[doc][names[term]] += v
	})
	return out, tdm, names, nil
}

// byDocument - per-text weights from a terms x docs matrix
func byDocument(tdm mat.Matrix, names []string) []map[string]float64 {
	_, docs := tdm.Dims()
	out := make([]map[string]float64, docs)
	for i := range out {
		out[i] = make(map[string]float64)
	}
	walk(tdm, func(term, doc int, v float64) {
		out[doc][names[term]] = v
	})
	return out
}

// walk - visit every non-zero entry; sparse matrices do this themselves
func walk(m mat.Matrix, fn func(i, j int, v float64)) {
	if nz, ok := m.(nonZeroer); ok {
		nz.DoNonZero(fn)
		return
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v != 0 {
				fn(i, j, v)
			}
		}
	}
}
