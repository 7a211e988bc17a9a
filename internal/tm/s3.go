//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/MHA535/turftopic/internal/vv"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//
// SEMANTIC SIGNAL SEPARATION
//

// E[log cosh(v)] for a standard normal v
const gaussLogCosh = 0.3745672075

// S3Config - tuning for semantic signal separation
type S3Config struct {
	NTopics   int     `json:"ntopics" yaml:"ntopics"`
	Method    string  `json:"method" yaml:"method"` // "ica" or "pca"
	MaxIter   int     `json:"maxiter" yaml:"maxiter"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	Seed      int64   `json:"seed" yaml:"seed"`
}

func DefaultS3Config(t int) S3Config {
	return S3Config{
		NTopics:   t,
		Method:    vv.DEFAULTS3METHOD,
		MaxIter:   vv.ICAMAXITER,
		Tolerance: vv.ICATOLERANCE,
		Seed:      vv.DEFAULTSEED,
	}
}

// S3 - topics are directions in embedding space along which documents separate
//
// Axes are ordered by their separation score (negentropy for ica, variance for pca), largest first.
// An axis is only defined up to sign: a refit may flip it, and both poles of an axis carry meaning.
type S3 struct {
	cfg       S3Config
	mean      []float64
	unmix     *mat.Dense // T x d
	topicterm *mat.Dense // T x V
	terms     []string
	score     []float64
}

func NewS3(cfg S3Config) (*S3, error) {
	if cfg.NTopics <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopicCount, cfg.NTopics)
	}
	if cfg.Method != "pca" {
		cfg.Method = "ica"
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = vv.ICAMAXITER
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = vv.ICATOLERANCE
	}
	return &S3{cfg: cfg}, nil
}

func (s *S3) Name() string { return "s3" }

func (s *S3) NTopics() int { return s.cfg.NTopics }

func (s *S3) Config() S3Config { return s.cfg }

func (s *S3) Capabilities() Capabilities {
	return Capabilities{Signed: true, TermEmbeddings: true}
}

func (s *S3) Reset() {
	s.mean, s.unmix, s.topicterm, s.terms, s.score = nil, nil, nil, nil, nil
}

func (s *S3) TopicTermMatrix() *mat.Dense { return copyDense(s.topicterm) }

// Scores - separation score of every axis in canonical order
func (s *S3) Scores() []float64 {
	out := make([]float64, len(s.score))
	copy(out, s.score)
	return out
}

// Fit - always a refit from scratch
func (s *S3) Fit(b Batch) error {
	const (
		FAIL1 = "%w: %d axes cannot be drawn from %d documents of dimension %d"
		FAIL2 = "%w: s3 needs a vocabulary"
		FAIL3 = "%w: the embeddings have rank below %d"
		MSG1  = "s3: %s found %d axes in %d iterations"
	)

	x, err := b.embeddings()
	if err != nil {
		return err
	}
	n, d := x.Dims()
	t := s.cfg.NTopics
	if t > n || t > d {
		return fmt.Errorf(FAIL1, ErrInvalidTopicCount, t, n, d)
	}
	if b.vocabLen() == 0 {
		return fmt.Errorf(FAIL2, ErrEmptyBatch)
	}
	vemb, err := b.Vocab.Embeddings()
	if err != nil {
		return err
	}
	if _, vd := vemb.Dims(); vd != d {
		return fmt.Errorf("%w: term embeddings have %d dimensions, documents %d", ErrDimensionMismatch, vd, d)
	}

	p, err := fitPCA(x, t)
	if err != nil {
		return err
	}
	if p.variance[t-1] <= 1e-12*p.variance[0] {
		return fmt.Errorf(FAIL3, ErrInvalidTopicCount, t)
	}

	var unmix *mat.Dense
	var score []float64
	iters := 0
	switch s.cfg.Method {
	case "pca":
		unmix = p.components
		score = append([]float64(nil), p.variance...)
	default:
		// whitening: K = diag(1/sqrt(var)) * V^T
		k := mat.DenseCopyOf(p.components)
		for i := 0; i < t; i++ {
			row := k.RawRowView(i)
			f := 1 / math.Sqrt(p.variance[i])
			for j := range row {
				row[j] *= f
			}
		}
		z := p.transform(x)
		for i := 0; i < t; i++ {
			f := 1 / math.Sqrt(p.variance[i])
			for r := 0; r < n; r++ {
				z.Set(r, i, z.At(r, i)*f)
			}
		}
		var w *mat.Dense
		w, iters = fastICA(z, t, s.cfg.MaxIter, s.cfg.Tolerance, rand.New(rand.NewSource(s.cfg.Seed)))
		unmix = mat.NewDense(t, d, nil)
		unmix.Mul(w, k)

		var y mat.Dense
		y.Mul(z, w.T())
		score = make([]float64, t)
		for i := 0; i < t; i++ {
			score[i] = negentropy(mat.Col(nil, i, &y))
		}
	}

	// canonical order: largest score first
	order := make([]int, t)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return score[order[a]] > score[order[b]] })
	sorted := mat.NewDense(t, d, nil)
	sortedscore := make([]float64, t)
	for i, o := range order {
		sorted.SetRow(i, unmix.RawRowView(o))
		sortedscore[i] = score[o]
	}

	// terms share the documents' origin
	var tt mat.Dense
	tt.Mul(sorted, centered(vemb, p.mean).T())

	s.mean = p.mean
	s.unmix = sorted
	s.topicterm = &tt
	s.terms = b.Vocab.Terms()
	s.score = sortedscore
	Msg.PEEK(fmt.Sprintf(MSG1, s.cfg.Method, t, iters))
	return nil
}

// Transform - centred document embeddings projected onto the axes
func (s *S3) Transform(b Batch) (*mat.Dense, error) {
	if s.unmix == nil {
		return nil, ErrNotFitted
	}
	x, err := b.embeddings()
	if err != nil {
		return nil, err
	}
	if _, d := x.Dims(); d != len(s.mean) {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, d, len(s.mean))
	}
	xc := centered(x, s.mean)
	var out mat.Dense
	out.Mul(xc, s.unmix.T())
	return &out, nil
}

// ConceptCompass - every term, and every document row of docTopic when it is not nil, on axes x and y
func (s *S3) ConceptCompass(x, y int, docTopic *mat.Dense) (Compass, error) {
	const (
		DOCLABEL = "document %d"
	)
	if s.topicterm == nil {
		return Compass{}, ErrNotFitted
	}
	t, v := s.topicterm.Dims()
	if x < 0 || y < 0 || x >= t || y >= t {
		return Compass{}, fmt.Errorf("%w: axes %d and %d requested from %d", ErrInvalidTopicCount, x, y, t)
	}
	c := Compass{AxisX: x, AxisY: y, Terms: make([]Point, v)}
	for j := 0; j < v; j++ {
		c.Terms[j] = Point{Label: s.terms[j], X: s.topicterm.At(x, j), Y: s.topicterm.At(y, j)}
	}
	if docTopic != nil {
		n, dt := docTopic.Dims()
		if dt != t {
			return Compass{}, fmt.Errorf("%w: document-topic matrix has %d columns, expected %d", ErrDimensionMismatch, dt, t)
		}
		c.Docs = make([]Point, n)
		for i := 0; i < n; i++ {
			c.Docs[i] = Point{Label: fmt.Sprintf(DOCLABEL, i), X: docTopic.At(i, x), Y: docTopic.At(i, y)}
		}
	}
	return c, nil
}

//
// FASTICA
//

// fastICA - symmetric FastICA with the logcosh contrast on whitened z (n x t); returns the t x t unmixing matrix
func fastICA(z *mat.Dense, t int, maxIter int, tol float64, rng *rand.Rand) (*mat.Dense, int) {
	n, _ := z.Dims()
	w := mat.NewDense(t, t, nil)
	for i := 0; i < t; i++ {
		for j := 0; j < t; j++ {
			w.Set(i, j, rng.NormFloat64())
		}
	}
	w = symDecorrelate(w)

	it := 0
	for it = 1; it <= maxIter; it++ {
		var y mat.Dense
		y.Mul(z, w.T()) // n x t

		g := mat.NewDense(n, t, nil)
		gp := make([]float64, t)
		for r := 0; r < n; r++ {
			for c := 0; c < t; c++ {
				th := math.Tanh(y.At(r, c))
				g.Set(r, c, th)
				gp[c] += 1 - th*th
			}
		}
		var wn mat.Dense
		wn.Mul(g.T(), z) // t x t
		wn.Scale(1/float64(n), &wn)
		for c := 0; c < t; c++ {
			f := gp[c] / float64(n)
			for j := 0; j < t; j++ {
				wn.Set(c, j, wn.At(c, j)-f*w.At(c, j))
			}
		}
		next := symDecorrelate(&wn)

		var chk mat.Dense
		chk.Mul(next, w.T())
		lim := 0.0
		for c := 0; c < t; c++ {
			if d := math.Abs(math.Abs(chk.At(c, c)) - 1); d > lim {
				lim = d
			}
		}
		w = next
		if lim < tol {
			break
		}
	}
	if it > maxIter {
		it = maxIter
	}
	return w, it
}

// symDecorrelate - (W W^T)^(-1/2) W
func symDecorrelate(w *mat.Dense) *mat.Dense {
	t, _ := w.Dims()
	var wwt mat.Dense
	wwt.Mul(w, w.T())
	sym := mat.NewSymDense(t, nil)
	for i := 0; i < t; i++ {
		for j := i; j < t; j++ {
			sym.SetSym(i, j, wwt.At(i, j))
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return mat.DenseCopyOf(w)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	inv := mat.NewDiagDense(t, nil)
	for i, v := range vals {
		if v < eps {
			v = eps
		}
		inv.SetDiag(i, 1/math.Sqrt(v))
	}
	var tmp, root, out mat.Dense
	tmp.Mul(&vecs, inv)
	root.Mul(&tmp, vecs.T())
	out.Mul(&root, w)
	return &out
}

// negentropy - (E[G(y)] - E[G(v)])^2 with G = log cosh on the standardised signal
func negentropy(y []float64) float64 {
	m, sd := stat.MeanStdDev(y, nil)
	if sd == 0 {
		return 0
	}
	g := 0.0
	for _, v := range y {
		g += logCosh((v - m) / sd)
	}
	g /= float64(len(y))
	return (g - gaussLogCosh) * (g - gaussLogCosh)
}

func logCosh(x float64) float64 {
	a := math.Abs(x)
	// log cosh(x) = |x| + log(1 + e^(-2|x|)) - log 2
	return a + math.Log1p(math.Exp(-2*a)) - math.Ln2
}
