//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

//
// DOCUMENTS, TERMS AND BATCHES
//

// Weighted - a vocabulary index and its weight inside one document
type Weighted struct {
	Term   int
	Weight float64
}

// TermWeights - one row of the sparse term-document structure; sorted by Term; zero weights are never stored
type TermWeights []Weighted

// NewTermWeights - build a TermWeights from a map; non-positive weights are dropped
func NewTermWeights(w map[int]float64) TermWeights {
	if len(w) == 0 {
		return nil
	}
	tw := make(TermWeights, 0, len(w))
	for k, v := range w {
		if v > 0 {
			tw = append(tw, Weighted{Term: k, Weight: v})
		}
	}
	sort.Slice(tw, func(i, j int) bool { return tw[i].Term < tw[j].Term })
	return tw
}

// Sum - total weight of the row
func (tw TermWeights) Sum() float64 {
	s := 0.0
	for _, w := range tw {
		s += w.Weight
	}
	return s
}

// Document - what a Strategy sees of a single document
type Document struct {
	Embedding []float64
	Terms     TermWeights
}

// Batch - documents plus the vocabulary their Terms index into
type Batch struct {
	Docs  []Document
	Vocab *Vocabulary
}

func (b Batch) Len() int { return len(b.Docs) }

// embeddings - the batch embeddings as an n x d matrix
func (b Batch) embeddings() (*mat.Dense, error) {
	if len(b.Docs) == 0 {
		return nil, ErrEmptyBatch
	}
	d := len(b.Docs[0].Embedding)
	if d == 0 {
		return nil, fmt.Errorf("%w: document 0 has no embedding", ErrDimensionMismatch)
	}
	x := mat.NewDense(len(b.Docs), d, nil)
	for i := range b.Docs {
		if len(b.Docs[i].Embedding) != d {
			return nil, fmt.Errorf("%w: document %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(b.Docs[i].Embedding), d)
		}
		x.SetRow(i, b.Docs[i].Embedding)
	}
	return x, nil
}

// vocabLen - V for the batch; zero when there is no vocabulary
func (b Batch) vocabLen() int {
	if b.Vocab == nil {
		return 0
	}
	return b.Vocab.Len()
}

//
// VOCABULARY
//

// Vocabulary - append-only list of terms and (optionally) their embeddings
type Vocabulary struct {
	terms []string
	index map[string]int
	vecs  [][]float64
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

func (v *Vocabulary) Len() int { return len(v.terms) }

func (v *Vocabulary) Term(i int) string { return v.terms[i] }

func (v *Vocabulary) Index(t string) (int, bool) {
	i, ok := v.index[t]
	return i, ok
}

// Terms - a copy of the term list in index order
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Vector - the embedding for term i; nil if none was recorded
func (v *Vocabulary) Vector(i int) []float64 { return v.vecs[i] }

// Embeddings - V x d matrix of term embeddings
func (v *Vocabulary) Embeddings() (*mat.Dense, error) {
	const (
		FAIL1 = "term %q has no embedding"
	)
	if len(v.terms) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrEmptyBatch)
	}
	d := len(v.vecs[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: "+FAIL1, ErrDimensionMismatch, v.terms[0])
	}
	e := mat.NewDense(len(v.terms), d, nil)
	for i, vec := range v.vecs {
		if vec == nil {
			return nil, fmt.Errorf("%w: "+FAIL1, ErrDimensionMismatch, v.terms[i])
		}
		if len(vec) != d {
			return nil, fmt.Errorf("%w: term %q has %d dimensions, expected %d", ErrDimensionMismatch, v.terms[i], len(vec), d)
		}
		e.SetRow(i, vec)
	}
	return e, nil
}

func (v *Vocabulary) add(t string, vec []float64) int {
	if i, ok := v.index[t]; ok {
		if v.vecs[i] == nil && vec != nil {
			v.vecs[i] = vec
		}
		return i
	}
	v.index[t] = len(v.terms)
	v.terms = append(v.terms, t)
	v.vecs = append(v.vecs, vec)
	return len(v.terms) - 1
}

// clone - an independent copy; the vectors themselves are shared since they are never written to
func (v *Vocabulary) clone() *Vocabulary {
	n := &Vocabulary{
		terms: make([]string, len(v.terms)),
		index: make(map[string]int, len(v.index)),
		vecs:  make([][]float64, len(v.vecs)),
	}
	copy(n.terms, v.terms)
	copy(n.vecs, v.vecs)
	for k, i := range v.index {
		n.index[k] = i
	}
	return n
}

//
// STRATEGY CONTRACT
//

// Capabilities - what a Strategy can do and what it needs from the Model
type Capabilities struct {
	Incremental    bool // Fit refines instead of refitting; PartialFit allowed
	Keywords       bool // wants keyword-extracted term weights rather than raw counts
	Probabilistic  bool // document-topic rows sum to 1
	Signed         bool // topic-term entries carry a sign relative to their axis
	TermEmbeddings bool // needs an embedding for every vocabulary term
}

// Strategy - one decomposition algorithm; implementations are not safe for concurrent use
type Strategy interface {
	Name() string
	NTopics() int
	Capabilities() Capabilities
	// Fit consumes a batch; incremental strategies refine their state, batch-only strategies refit from scratch
	Fit(b Batch) error
	// Transform returns len(b.Docs) x T and never mutates the strategy
	Transform(b Batch) (*mat.Dense, error)
	// TopicTermMatrix returns a copy of the current T x V matrix; nil before Fit
	TopicTermMatrix() *mat.Dense
	// Reset discards fitted state
	Reset()
}

// BinProfiler - strategies that can describe a subset of documents with their own topic-term matrix
type BinProfiler interface {
	TopicTermFor(b Batch, docTopic *mat.Dense) (*mat.Dense, error)
}

// Compasser - strategies with semantic axes that can be plotted against one another
type Compasser interface {
	ConceptCompass(x, y int, docTopic *mat.Dense) (Compass, error)
}

// Point - a labelled 2-D coordinate
type Point struct {
	Label string
	X     float64
	Y     float64
}

// Compass - terms and documents placed on two semantic axes
type Compass struct {
	AxisX int
	AxisY int
	Terms []Point
	Docs  []Point
}
