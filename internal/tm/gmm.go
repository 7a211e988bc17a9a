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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

//
// GAUSSIAN MIXTURE TOPIC MODEL
//

// GMMConfig - tuning for the mixture strategy
type GMMConfig struct {
	NTopics    int     `json:"ntopics" yaml:"ntopics"`
	ReduceDims int     `json:"reducedims" yaml:"reducedims"`
	MaxIter    int     `json:"maxiter" yaml:"maxiter"`
	Tolerance  float64 `json:"tolerance" yaml:"tolerance"` // change in mean log-likelihood that ends EM
	Reg        float64 `json:"reg" yaml:"reg"`             // added to every variance
	Seed       int64   `json:"seed" yaml:"seed"`
}

func DefaultGMMConfig(t int) GMMConfig {
	return GMMConfig{
		NTopics:   t,
		MaxIter:   vv.GMMMAXITER,
		Tolerance: vv.GMMTOLERANCE,
		Reg:       vv.GMMREG,
		Seed:      vv.DEFAULTSEED,
	}
}

// GMM - diagonal-covariance Gaussian mixture; document-topic rows are posterior memberships and sum to 1
type GMM struct {
	cfg       GMMConfig
	proj      *pca
	weights   []float64
	means     *mat.Dense // T x d'
	vars      *mat.Dense // T x d'
	dim       int
	topicterm *mat.Dense
	loglik    float64
}

func NewGMM(cfg GMMConfig) (*GMM, error) {
	if cfg.NTopics <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopicCount, cfg.NTopics)
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = vv.GMMMAXITER
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = vv.GMMTOLERANCE
	}
	if cfg.Reg <= 0 {
		cfg.Reg = vv.GMMREG
	}
	return &GMM{cfg: cfg}, nil
}

func (g *GMM) Name() string { return "gmm" }

func (g *GMM) NTopics() int { return g.cfg.NTopics }

func (g *GMM) Config() GMMConfig { return g.cfg }

func (g *GMM) Capabilities() Capabilities {
	return Capabilities{Probabilistic: true}
}

func (g *GMM) Reset() {
	g.proj, g.weights, g.means, g.vars, g.topicterm = nil, nil, nil, nil, nil
	g.dim, g.loglik = 0, 0
}

func (g *GMM) TopicTermMatrix() *mat.Dense { return copyDense(g.topicterm) }

// LogLikelihood - mean per-document log-likelihood at the end of the last Fit
func (g *GMM) LogLikelihood() float64 { return g.loglik }

// Fit - EM from a k-means start; always a refit from scratch
func (g *GMM) Fit(b Batch) error {
	const (
		FAIL1 = "%w: %d components requested from %d documents"
		FAIL2 = "%w: the mixture model needs a vocabulary"
		MSG1  = "gmm: EM stopped after %d iterations (mean log-likelihood %.4f)"
	)

	x, err := b.embeddings()
	if err != nil {
		return err
	}
	n, d := x.Dims()
	t := g.cfg.NTopics
	if t > n {
		return fmt.Errorf(FAIL1, ErrInvalidTopicCount, t, n)
	}
	v := b.vocabLen()
	if v == 0 {
		return fmt.Errorf(FAIL2, ErrEmptyBatch)
	}

	var proj *pca
	space := x
	if r := g.cfg.ReduceDims; r > 0 && r < d && r <= n {
		proj, err = fitPCA(x, r)
		if err != nil {
			return err
		}
		space = proj.transform(x)
	}
	_, sd := space.Dims()

	// [a] k-means start
	labels, means := kmeans(space, t, rand.New(rand.NewSource(g.cfg.Seed)), vv.KMEANSMAXITER)
	resp := mat.NewDense(n, t, nil)
	for i, l := range labels {
		resp.Set(i, l, 1)
	}
	weights := make([]float64, t)
	vars := mat.NewDense(t, sd, nil)
	g.mstep(space, resp, weights, means, vars)

	// [b] EM
	prev := math.Inf(-1)
	ll := 0.0
	it := 0
	for it = 1; it <= g.cfg.MaxIter; it++ {
		ll = estep(space, weights, means, vars, resp)
		g.mstep(space, resp, weights, means, vars)
		if math.Abs(ll-prev) < g.cfg.Tolerance {
			break
		}
		prev = ll
	}
	if it > g.cfg.MaxIter {
		it = g.cfg.MaxIter
	}
	ll = estep(space, weights, means, vars, resp)

	g.proj = proj
	g.weights = weights
	g.means = means
	g.vars = vars
	g.dim = d
	g.loglik = ll
	g.topicterm = softCTFIDF(b.Docs, resp, v)
	Msg.PEEK(fmt.Sprintf(MSG1, it, ll))
	return nil
}

// Transform - posterior membership of each document
func (g *GMM) Transform(b Batch) (*mat.Dense, error) {
	if g.means == nil {
		return nil, ErrNotFitted
	}
	x, err := b.embeddings()
	if err != nil {
		return nil, err
	}
	n, d := x.Dims()
	if d != g.dim {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, d, g.dim)
	}
	space := x
	if g.proj != nil {
		space = g.proj.transform(x)
	}
	resp := mat.NewDense(n, g.cfg.NTopics, nil)
	estep(space, g.weights, g.means, g.vars, resp)
	return resp, nil
}

// TopicTermFor - soft salience over a subset of documents
func (g *GMM) TopicTermFor(b Batch, docTopic *mat.Dense) (*mat.Dense, error) {
	if g.means == nil {
		return nil, ErrNotFitted
	}
	return softCTFIDF(b.Docs, docTopic, g.topicterm.RawMatrix().Cols), nil
}

// estep - fill resp with normalised posteriors; returns the mean log-likelihood
func estep(x *mat.Dense, weights []float64, means, vars, resp *mat.Dense) float64 {
	n, d := x.Dims()
	t := len(weights)
	lp := make([]float64, t)
	total := 0.0
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for c := 0; c < t; c++ {
			s := math.Log(weights[c] + eps)
			mu := means.RawRowView(c)
			va := vars.RawRowView(c)
			for j := 0; j < d; j++ {
				s += distuv.Normal{Mu: mu[j], Sigma: math.Sqrt(va[j])}.LogProb(row[j])
			}
			lp[c] = s
		}
		norm := floats.LogSumExp(lp)
		total += norm
		r := resp.RawRowView(i)
		for c := 0; c < t; c++ {
			r[c] = math.Exp(lp[c] - norm)
		}
	}
	return total / float64(n)
}

// mstep - weights, means and diagonal variances from the responsibilities; starved components keep their old values
func (g *GMM) mstep(x *mat.Dense, resp *mat.Dense, weights []float64, means, vars *mat.Dense) {
	n, d := x.Dims()
	t := len(weights)

	global := make([]float64, d)
	gm := columnMeans(x)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for j := 0; j < d; j++ {
			dd := row[j] - gm[j]
			global[j] += dd * dd / float64(n)
		}
	}

	for c := 0; c < t; c++ {
		nk := 0.0
		for i := 0; i < n; i++ {
			nk += resp.At(i, c)
		}
		weights[c] = nk / float64(n)
		mu := means.RawRowView(c)
		va := vars.RawRowView(c)
		if nk < 1e-8 {
			for j := 0; j < d; j++ {
				if va[j] == 0 {
					va[j] = global[j] + g.cfg.Reg
				}
			}
			continue
		}
		for j := range mu {
			mu[j] = 0
		}
		for i := 0; i < n; i++ {
			if r := resp.At(i, c); r != 0 {
				floats.AddScaled(mu, r, x.RawRowView(i))
			}
		}
		floats.Scale(1/nk, mu)
		for j := range va {
			va[j] = 0
		}
		for i := 0; i < n; i++ {
			r := resp.At(i, c)
			if r == 0 {
				continue
			}
			row := x.RawRowView(i)
			for j := 0; j < d; j++ {
				dd := row[j] - mu[j]
				va[j] += r * dd * dd
			}
		}
		for j := range va {
			va[j] = va[j]/nk + g.cfg.Reg
		}
	}
}
