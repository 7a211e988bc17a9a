//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/MHA535/turftopic/internal/vv"
	"gonum.org/v1/gonum/mat"
)

//
// KEYWORD-WEIGHTED ONLINE NMF
//

// KeyNMFConfig - tuning for KeyNMF
type KeyNMFConfig struct {
	NTopics             int     `json:"ntopics" yaml:"ntopics"`
	Iterations          int     `json:"iterations" yaml:"iterations"`                   // multiplicative updates per batch
	TransformIterations int     `json:"transformiterations" yaml:"transformiterations"` // updates when inferring W for new documents
	LearningRate        float64 `json:"learningrate" yaml:"learningrate"`               // share of a batch's basis that replaces the old one
	Seed                int64   `json:"seed" yaml:"seed"`
}

func DefaultKeyNMFConfig(t int) KeyNMFConfig {
	return KeyNMFConfig{
		NTopics:             t,
		Iterations:          vv.NMFITERATIONS,
		TransformIterations: vv.NMFTRANSFORMITER,
		LearningRate:        vv.NMFLEARNINGRATE,
		Seed:                vv.DEFAULTSEED,
	}
}

// KeyNMF - non-negative factorisation X ≈ WH of keyword weights, refined batch by batch
//
// H (T x V) is the shared basis. Each Fit runs alternating multiplicative updates on the batch
// and then moves H toward the batch solution by LearningRate; the first batch is taken whole.
type KeyNMF struct {
	cfg     KeyNMFConfig
	h       *mat.Dense
	batches int
}

func NewKeyNMF(cfg KeyNMFConfig) (*KeyNMF, error) {
	if cfg.NTopics <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopicCount, cfg.NTopics)
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = vv.NMFITERATIONS
	}
	if cfg.TransformIterations <= 0 {
		cfg.TransformIterations = vv.NMFTRANSFORMITER
	}
	if cfg.LearningRate <= 0 || cfg.LearningRate > 1 {
		cfg.LearningRate = vv.NMFLEARNINGRATE
	}
	return &KeyNMF{cfg: cfg}, nil
}

func (k *KeyNMF) Name() string { return "keynmf" }

func (k *KeyNMF) NTopics() int { return k.cfg.NTopics }

func (k *KeyNMF) Config() KeyNMFConfig { return k.cfg }

func (k *KeyNMF) Capabilities() Capabilities {
	return Capabilities{Incremental: true, Keywords: true}
}

func (k *KeyNMF) Reset() {
	k.h = nil
	k.batches = 0
}

func (k *KeyNMF) TopicTermMatrix() *mat.Dense { return copyDense(k.h) }

// Fit - absorb one batch; nothing is written to k unless the whole batch succeeds
func (k *KeyNMF) Fit(b Batch) error {
	const (
		FAIL1 = "%w: keynmf needs a vocabulary"
		FAIL2 = "%w: the vocabulary shrank from %d to %d terms"
		FAIL3 = "%w: no document in the batch carries any keyword weight"
		FAIL4 = "%w: document %d refers to term %d but the vocabulary has %d terms"
		MSG1  = "keynmf: batch %d absorbed %d documents (vocabulary %d; reconstruction error %.4f)"
	)

	if b.Len() == 0 {
		return ErrEmptyBatch
	}
	v := b.vocabLen()
	if v == 0 {
		return fmt.Errorf(FAIL1, ErrEmptyBatch)
	}
	if k.h != nil && k.h.RawMatrix().Cols > v {
		return fmt.Errorf(FAIL2, ErrDimensionMismatch, k.h.RawMatrix().Cols, v)
	}

	x := make([]TermWeights, b.Len())
	total := 0.0
	for i, d := range b.Docs {
		for _, w := range d.Terms {
			if w.Term < 0 || w.Term >= v {
				return fmt.Errorf(FAIL4, ErrDimensionMismatch, i, w.Term, v)
			}
		}
		x[i] = d.Terms
		total += d.Terms.Sum()
	}
	if total == 0 {
		return fmt.Errorf(FAIL3, ErrEmptyBatch)
	}

	t := k.cfg.NTopics
	rng := rand.New(rand.NewSource(k.cfg.Seed + int64(k.batches)))
	scale := math.Sqrt(total / float64(b.Len()*v) / float64(t))

	// [a] the starting basis: old H with any new vocabulary columns seeded
	old, have := k.grow(v, scale, rng)

	// [b] W for the batch: positive random start
	w := mat.NewDense(b.Len(), t, nil)
	for i := 0; i < b.Len(); i++ {
		row := w.RawRowView(i)
		for j := range row {
			row[j] = scale * (0.5 + rng.Float64())
		}
	}

	// [c] alternate updates on the batch alone
	h := mat.DenseCopyOf(old)
	for it := 0; it < k.cfg.Iterations; it++ {
		updateW(w, x, h)
		updateH(h, w, x)
	}

	// [d] damped step toward the batch basis
	eta := k.cfg.LearningRate
	if k.h == nil {
		eta = 1
	}
	if eta < 1 {
		// the seeds only start the batch; the old basis had no weight on new terms
		for i := 0; i < t; i++ {
			row := old.RawRowView(i)
			for j := have; j < v; j++ {
				row[j] = 0
			}
		}
		h.Scale(eta, h)
		var keep mat.Dense
		keep.Scale(1-eta, old)
		h.Add(h, &keep)
	}
	clipNonNeg(h)

	// [e] commit
	k.h = h
	k.batches++
	Msg.PEEK(fmt.Sprintf(MSG1, k.batches, b.Len(), v, reconstructionError(x, w, h)))
	return nil
}

// Transform - W for new documents with H held fixed; rows are solved independently
func (k *KeyNMF) Transform(b Batch) (*mat.Dense, error) {
	if k.h == nil {
		return nil, ErrNotFitted
	}
	if b.Len() == 0 {
		return nil, ErrEmptyBatch
	}
	t, v := k.h.Dims()

	// terms the basis has never seen are ignored
	x := make([]TermWeights, b.Len())
	for i, d := range b.Docs {
		for _, tw := range d.Terms {
			if tw.Term >= 0 && tw.Term < v {
				x[i] = append(x[i], tw)
			}
		}
	}

	w := mat.NewDense(b.Len(), t, nil)
	for i := 0; i < b.Len(); i++ {
		row := w.RawRowView(i)
		for j := range row {
			row[j] = 1
		}
	}
	var hht mat.Dense
	hht.Mul(k.h, k.h.T())
	for it := 0; it < k.cfg.TransformIterations; it++ {
		updateWFixed(w, x, k.h, &hht)
	}
	clipNonNeg(w)
	return w, nil
}

// TopicTermFor - the basis as seen through a subset of documents: sum_i W_ik X_iv / sum_i W_ik
func (k *KeyNMF) TopicTermFor(b Batch, docTopic *mat.Dense) (*mat.Dense, error) {
	if k.h == nil {
		return nil, ErrNotFitted
	}
	t, v := k.h.Dims()
	out := mat.NewDense(t, v, nil)
	norm := make([]float64, t)
	for i, d := range b.Docs {
		for c := 0; c < t; c++ {
			wic := docTopic.At(i, c)
			norm[c] += wic
			row := out.RawRowView(c)
			for _, tw := range d.Terms {
				if tw.Term < v {
					row[tw.Term] += wic * tw.Weight
				}
			}
		}
	}
	for c := 0; c < t; c++ {
		if norm[c] > 0 {
			row := out.RawRowView(c)
			for j := range row {
				row[j] /= norm[c]
			}
		}
	}
	return out, nil
}

// grow - a copy of H widened to v columns; fresh columns get small positive values; also the old width
func (k *KeyNMF) grow(v int, scale float64, rng *rand.Rand) (*mat.Dense, int) {
	t := k.cfg.NTopics
	h := mat.NewDense(t, v, nil)
	have := 0
	if k.h != nil {
		_, have = k.h.Dims()
		h.Slice(0, t, 0, have).(*mat.Dense).Copy(k.h)
	}
	for i := 0; i < t; i++ {
		row := h.RawRowView(i)
		for j := have; j < v; j++ {
			row[j] = scale * (0.5 + rng.Float64())
		}
	}
	return h, have
}

//
// MULTIPLICATIVE UPDATES ON A SPARSE X
//

// updateW - W <- W * (X H^T) / (W H H^T)
func updateW(w *mat.Dense, x []TermWeights, h *mat.Dense) {
	var hht mat.Dense
	hht.Mul(h, h.T())
	updateWFixed(w, x, h, &hht)
}

// updateWFixed - one W update given a precomputed H H^T; row i depends only on row i
func updateWFixed(w *mat.Dense, x []TermWeights, h *mat.Dense, hht *mat.Dense) {
	t, _ := h.Dims()
	num := make([]float64, t)
	den := make([]float64, t)
	for i := range x {
		row := w.RawRowView(i)
		for c := 0; c < t; c++ {
			hrow := h.RawRowView(c)
			s := 0.0
			for _, tw := range x[i] {
				s += tw.Weight * hrow[tw.Term]
			}
			num[c] = s

			g := hht.RawRowView(c)
			dd := 0.0
			for j := 0; j < t; j++ {
				dd += row[j] * g[j]
			}
			den[c] = dd
		}
		for c := 0; c < t; c++ {
			row[c] *= num[c] / (den[c] + eps)
			if row[c] < 0 {
				row[c] = 0
			}
		}
	}
}

// updateH - H <- H * (W^T X) / (W^T W H)
func updateH(h *mat.Dense, w *mat.Dense, x []TermWeights) {
	t, v := h.Dims()
	num := mat.NewDense(t, v, nil)
	for i := range x {
		wrow := w.RawRowView(i)
		for c := 0; c < t; c++ {
			if wrow[c] == 0 {
				continue
			}
			nrow := num.RawRowView(c)
			for _, tw := range x[i] {
				nrow[tw.Term] += wrow[c] * tw.Weight
			}
		}
	}
	var wtw, den mat.Dense
	wtw.Mul(w.T(), w)
	den.Mul(&wtw, h)

	for c := 0; c < t; c++ {
		hrow := h.RawRowView(c)
		nrow := num.RawRowView(c)
		drow := den.RawRowView(c)
		for j := 0; j < v; j++ {
			hrow[j] *= nrow[j] / (drow[j] + eps)
			if hrow[j] < 0 {
				hrow[j] = 0
			}
		}
	}
}

// reconstructionError - ||X - WH||_F without materialising X
func reconstructionError(x []TermWeights, w, h *mat.Dense) float64 {
	var xx, cross float64
	for i := range x {
		wrow := w.RawRowView(i)
		for _, tw := range x[i] {
			xx += tw.Weight * tw.Weight
			for c := range wrow {
				cross += wrow[c] * h.At(c, tw.Term) * tw.Weight
			}
		}
	}
	var wtw, hht, prod mat.Dense
	wtw.Mul(w.T(), w)
	hht.Mul(h, h.T())
	prod.MulElem(&wtw, &hht)
	whwh := mat.Sum(&prod)
	e := xx - 2*cross + whwh
	if e < 0 {
		e = 0
	}
	return math.Sqrt(e)
}
