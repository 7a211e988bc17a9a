//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"context"
	"fmt"

	"github.com/MHA535/turftopic/internal/emb"
	"github.com/MHA535/turftopic/internal/kw"
	"github.com/MHA535/turftopic/internal/mm"
	"gonum.org/v1/gonum/mat"
)

var Msg = mm.NewMessageMaker()

//
// THE TOPIC MODEL
//

// Config - settings that belong to the model rather than to a strategy
type Config struct {
	NTopics    int  `json:"ntopics" yaml:"ntopics"`
	TopN       int  `json:"topn" yaml:"topn"`             // keywords kept per document
	Dimensions int  `json:"dimensions" yaml:"dimensions"` // 0: taken from the first fitted document
	MinDF      int  `json:"mindf" yaml:"mindf"`           // candidates seen in fewer documents are ignored
	KeywordIDF bool `json:"keywordidf" yaml:"keywordidf"` // scale keyword weights by normalised IDF
}

// Text - one input document; Terms are its candidate terms with repetition
type Text struct {
	Body      string
	Terms     []string
	Embedding []float64 // precomputed; the encoder is only asked for texts without one
}

// Model - a strategy plus everything it has learned about vocabulary and dimensionality
//
// A Model is not safe for concurrent use. Every failed call leaves it exactly as it was.
type Model struct {
	cfg      Config
	strategy Strategy
	enc      emb.Encoder
	vocab    *Vocabulary
	df       *DocFreq
	dim      int
	fitted   bool
	batches  int
	docTopic *mat.Dense
}

// staged - the result of preparing a batch; nothing here has been committed yet
type staged struct {
	batch Batch
	vocab *Vocabulary
	df    *DocFreq
	dim   int
}

func NewModel(cfg Config, s Strategy, enc emb.Encoder) (*Model, error) {
	const (
		FAIL1 = "%w: a model needs a strategy"
		FAIL2 = "%w: model wants %d topics but the %s strategy was built for %d"
	)
	if cfg.NTopics <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopicCount, cfg.NTopics)
	}
	if s == nil {
		return nil, fmt.Errorf(FAIL1, ErrUnsupported)
	}
	if s.NTopics() != cfg.NTopics {
		return nil, fmt.Errorf(FAIL2, ErrInvalidTopicCount, cfg.NTopics, s.Name(), s.NTopics())
	}
	if cfg.MinDF < 1 {
		cfg.MinDF = 1
	}
	return &Model{
		cfg:      cfg,
		strategy: s,
		enc:      enc,
		vocab:    NewVocabulary(),
		df:       NewDocFreq(),
		dim:      cfg.Dimensions,
	}, nil
}

func (m *Model) Config() Config { return m.cfg }

func (m *Model) Strategy() Strategy { return m.strategy }

func (m *Model) Fitted() bool { return m.fitted }

// Batches - how many batches have been absorbed since the last reset
func (m *Model) Batches() int { return m.batches }

// Dimensions - the embedding length the model expects; 0 before the first fit unless configured
func (m *Model) Dimensions() int { return m.dim }

// Vocab - the feature names in index order
func (m *Model) Vocab() []string { return m.vocab.Terms() }

// DocFreq - a copy of the running document frequencies
func (m *Model) DocFreq() *DocFreq { return m.df.clone() }

// DocTopic - document-topic matrix of the last Fit, FitTransform, PartialFit batch or Record
func (m *Model) DocTopic() *mat.Dense { return copyDense(m.docTopic) }

// TopicTermMatrix - T x V copy; nil before any fit
func (m *Model) TopicTermMatrix() *mat.Dense {
	if !m.fitted {
		return nil
	}
	return m.strategy.TopicTermMatrix()
}

// PartialFit - absorb one batch into an incremental strategy
func (m *Model) PartialFit(ctx context.Context, docs []Text) error {
	const (
		FAIL1 = "%w: %s cannot be fitted incrementally"
	)
	if len(docs) == 0 {
		return ErrEmptyBatch
	}
	if !m.strategy.Capabilities().Incremental {
		return fmt.Errorf(FAIL1, ErrUnsupported, m.strategy.Name())
	}
	st, err := m.prepare(ctx, docs, m.vocab, m.df, m.dim, true)
	if err != nil {
		return err
	}
	return m.absorb(st, false)
}

// Fit - forget everything and fit on docs
//
// For an incremental strategy this is one PartialFit over the whole corpus.
func (m *Model) Fit(ctx context.Context, docs []Text) error {
	const (
		FAIL1 = "%w: no document carries any term weight"
	)
	if len(docs) == 0 {
		return ErrEmptyBatch
	}
	st, err := m.prepare(ctx, docs, NewVocabulary(), NewDocFreq(), m.cfg.Dimensions, true)
	if err != nil {
		return err
	}

	caps := m.strategy.Capabilities()
	if caps.Incremental {
		// the reset below cannot be undone, so the one failure an incremental Fit can meet is checked first
		total := 0.0
		for _, d := range st.batch.Docs {
			total += d.Terms.Sum()
		}
		if total == 0 || st.vocab.Len() == 0 {
			return fmt.Errorf(FAIL1, ErrEmptyBatch)
		}
		m.strategy.Reset()
		m.reset()
	}
	return m.absorb(st, true)
}

// FitTransform - Fit, then the document-topic matrix of the fitted documents
func (m *Model) FitTransform(ctx context.Context, docs []Text) (*mat.Dense, error) {
	if err := m.Fit(ctx, docs); err != nil {
		return nil, err
	}
	return m.DocTopic(), nil
}

// Transform - document-topic rows for new documents; the model is not changed
func (m *Model) Transform(ctx context.Context, docs []Text) (*mat.Dense, error) {
	b, err := m.inference(ctx, docs)
	if err != nil {
		return nil, err
	}
	return m.strategy.Transform(b)
}

// Record - Transform docs and keep the result as the model's document-topic matrix
//
// After online fitting this puts the whole corpus back where the last batch was.
func (m *Model) Record(ctx context.Context, docs []Text) (*mat.Dense, error) {
	dt, err := m.Transform(ctx, docs)
	if err != nil {
		return nil, err
	}
	m.docTopic = dt
	return copyDense(dt), nil
}

// TransformProfile - Transform plus the topic-term matrix as seen through those documents alone
//
// Strategies that cannot describe a subset fall back on the global topic-term matrix.
func (m *Model) TransformProfile(ctx context.Context, docs []Text) (*mat.Dense, *mat.Dense, error) {
	b, err := m.inference(ctx, docs)
	if err != nil {
		return nil, nil, err
	}
	dt, err := m.strategy.Transform(b)
	if err != nil {
		return nil, nil, err
	}
	bp, ok := m.strategy.(BinProfiler)
	if !ok {
		return dt, m.strategy.TopicTermMatrix(), nil
	}
	tt, err := bp.TopicTermFor(b, dt)
	if err != nil {
		return nil, nil, err
	}
	return dt, tt, nil
}

// ConceptCompass - terms and the last fitted documents on semantic axes x and y
func (m *Model) ConceptCompass(x, y int) (Compass, error) {
	const (
		FAIL1 = "%w: %s has no semantic axes"
	)
	if !m.fitted {
		return Compass{}, ErrNotFitted
	}
	c, ok := m.strategy.(Compasser)
	if !ok {
		return Compass{}, fmt.Errorf(FAIL1, ErrUnsupported, m.strategy.Name())
	}
	return c.ConceptCompass(x, y, m.docTopic)
}

func (m *Model) reset() {
	m.vocab = NewVocabulary()
	m.df = NewDocFreq()
	m.dim = m.cfg.Dimensions
	m.fitted = false
	m.batches = 0
	m.docTopic = nil
}

// absorb - fit the strategy on a staged batch and commit the staging on success; fresh restarts the batch count
func (m *Model) absorb(st staged, fresh bool) error {
	const (
		MSG1 = "%s: batch %d committed (%d documents, vocabulary %d, dimensions %d)"
	)
	if err := m.strategy.Fit(st.batch); err != nil {
		return err
	}
	m.vocab = st.vocab
	m.df = st.df
	m.dim = st.dim
	m.fitted = true
	if fresh {
		m.batches = 0
	}
	m.batches++

	dt, err := m.strategy.Transform(st.batch)
	if err != nil {
		m.docTopic = nil
		return err
	}
	m.docTopic = dt
	Msg.TMI(fmt.Sprintf(MSG1, m.strategy.Name(), m.batches, st.batch.Len(), st.vocab.Len(), st.dim))
	return nil
}

// inference - a batch for Transform: nothing is staged and unknown terms are dropped
func (m *Model) inference(ctx context.Context, docs []Text) (Batch, error) {
	if !m.fitted {
		return Batch{}, ErrNotFitted
	}
	if len(docs) == 0 {
		return Batch{}, ErrEmptyBatch
	}
	st, err := m.prepare(ctx, docs, m.vocab, m.df, m.dim, false)
	if err != nil {
		return Batch{}, err
	}
	return st.batch, nil
}

//
// STAGING
//

// prepare - embeddings, vocabulary, document frequencies and term weights for docs
//
// With grow set the vocabulary and DocFreq are copied and extended; otherwise they are read as they are.
// The originals are never written to.
func (m *Model) prepare(ctx context.Context, docs []Text, voc *Vocabulary, df *DocFreq, dim int, grow bool) (staged, error) {
	caps := m.strategy.Capabilities()

	// [a] document embeddings
	vecs, err := m.documentVectors(ctx, docs)
	if err != nil {
		return staged{}, err
	}
	if dim == 0 {
		dim = len(vecs[0])
	}
	for i, v := range vecs {
		if len(v) != dim {
			return staged{}, fmt.Errorf("%w: document %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}

	// [b] vocabulary and document frequencies
	if grow {
		voc = voc.clone()
		df = df.clone()
		for _, d := range docs {
			df.AddDocument(d.Terms)
			for _, t := range d.Terms {
				voc.add(t, nil)
			}
		}
		if caps.Keywords || caps.TermEmbeddings {
			if err = m.termVectors(ctx, voc, dim); err != nil {
				return staged{}, err
			}
		}
	}

	// [c] term weights
	b := Batch{Docs: make([]Document, len(docs)), Vocab: voc}
	for i, d := range docs {
		b.Docs[i].Embedding = vecs[i]
		if caps.Keywords {
			b.Docs[i].Terms, err = m.keywords(vecs[i], d.Terms, voc, df)
			if err != nil {
				return staged{}, err
			}
		} else {
			b.Docs[i].Terms = m.counts(d.Terms, voc, df)
		}
	}
	return staged{batch: b, vocab: voc, df: df, dim: dim}, nil
}

// documentVectors - precomputed embeddings where present, the encoder for the rest
func (m *Model) documentVectors(ctx context.Context, docs []Text) ([][]float64, error) {
	const (
		FAIL1 = "%w: %d documents have no embedding and there is no encoder"
		FAIL2 = "%w: encoder returned %d vectors for %d texts"
	)
	vecs := make([][]float64, len(docs))
	var need []int
	var bodies []string
	for i, d := range docs {
		if d.Embedding != nil {
			vecs[i] = d.Embedding
			continue
		}
		need = append(need, i)
		bodies = append(bodies, d.Body)
	}
	if len(need) == 0 {
		return vecs, nil
	}
	if m.enc == nil {
		return nil, fmt.Errorf(FAIL1, ErrUnsupported, len(need))
	}
	enc, err := m.enc.Encode(ctx, bodies)
	if err != nil {
		return nil, err
	}
	if len(enc) != len(need) {
		return nil, fmt.Errorf(FAIL2, ErrDimensionMismatch, len(enc), len(need))
	}
	for j, i := range need {
		vecs[i] = enc[j]
	}
	return vecs, nil
}

// termVectors - encode every vocabulary term that has no vector yet; voc must be a staged copy
func (m *Model) termVectors(ctx context.Context, voc *Vocabulary, dim int) error {
	const (
		FAIL1 = "%w: %d terms need embeddings and there is no encoder"
		FAIL2 = "%w: term %q has %d dimensions, expected %d"
	)
	var missing []string
	for i := 0; i < voc.Len(); i++ {
		if voc.Vector(i) == nil {
			missing = append(missing, voc.Term(i))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if m.enc == nil {
		return fmt.Errorf(FAIL1, ErrUnsupported, len(missing))
	}
	vecs, err := m.enc.Encode(ctx, missing)
	if err != nil {
		return err
	}
	if len(vecs) != len(missing) {
		return fmt.Errorf("%w: encoder returned %d vectors for %d terms", ErrDimensionMismatch, len(vecs), len(missing))
	}
	for i, t := range missing {
		if len(vecs[i]) != dim {
			return fmt.Errorf(FAIL2, ErrDimensionMismatch, t, len(vecs[i]), dim)
		}
		voc.add(t, vecs[i])
	}
	return nil
}

// pool - the distinct known terms of a document that pass MinDF, in order of first appearance
func (m *Model) pool(terms []string, voc *Vocabulary, df *DocFreq) []int {
	seen := make(map[int]bool, len(terms))
	out := make([]int, 0, len(terms))
	for _, t := range terms {
		i, ok := voc.Index(t)
		if !ok || seen[i] {
			continue
		}
		seen[i] = true
		if df.DF[t] < m.cfg.MinDF {
			continue
		}
		out = append(out, i)
	}
	return out
}

// keywords - the document's best candidates by similarity, optionally scaled by IDF
func (m *Model) keywords(doc []float64, terms []string, voc *Vocabulary, df *DocFreq) (TermWeights, error) {
	idx := m.pool(terms, voc, df)
	cands := make([]kw.Candidate, 0, len(idx))
	for _, i := range idx {
		if v := voc.Vector(i); v != nil {
			cands = append(cands, kw.Candidate{Term: voc.Term(i), Vector: v})
		}
	}
	got, err := kw.Extract(doc, cands, m.cfg.TopN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
	}
	w := make(map[int]float64, len(got))
	mx := df.MaxIDF()
	for _, k := range got {
		i, _ := voc.Index(k.Term)
		s := k.Weight
		if m.cfg.KeywordIDF {
			s *= df.IDF(k.Term) / mx
		}
		w[i] = s
	}
	return NewTermWeights(w), nil
}

// counts - raw term frequencies of the known terms that pass MinDF
func (m *Model) counts(terms []string, voc *Vocabulary, df *DocFreq) TermWeights {
	w := make(map[int]float64)
	for _, t := range terms {
		i, ok := voc.Index(t)
		if !ok || df.DF[t] < m.cfg.MinDF {
			continue
		}
		w[i]++
	}
	return NewTermWeights(w)
}
