//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package emb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/e-gun/wego/pkg/embedding"
	"github.com/e-gun/wego/pkg/model/modelutil/vector"
	"github.com/e-gun/wego/pkg/model/word2vec"
)

// DefaultW2VOptions - skipgram with hierarchical softmax; MinCount is low because topic corpora are often small
func DefaultW2VOptions() word2vec.Options {
	return word2vec.Options{
		BatchSize:          1024,
		Dim:                100,
		DocInMemory:        true,
		Goroutines:         8,
		Initlr:             0.025,
		Iter:               15,
		LogBatch:           100000,
		MaxCount:           -1,
		MaxDepth:           150,
		MinCount:           2,
		MinLR:              0.0000025,
		ModelType:          "skipgram", // "cbow" and "skipgram" available
		NegativeSampleSize: 5,
		OptimizerType:      "hs",
		SubsampleThreshold: 0.001,
		ToLower:            true,
		UpdateLRBatch:      100000,
		Verbose:            false,
		Window:             8,
	}
}

// Word2Vec - a local encoder: word vectors trained on the corpus itself; a text is the mean of its known words
type Word2Vec struct {
	dim   int
	words map[string][]float64
}

// TrainWord2Vec - train on the supplied texts; blocks until training is done
func TrainWord2Vec(texts []string, opts word2vec.Options) (*Word2Vec, error) {
	const (
		FAIL1 = "word2vec: could not build the model: %w"
		FAIL2 = "word2vec: training failed: %w"
		FAIL3 = "word2vec: could not save the vectors: %w"
		FAIL4 = "word2vec: could not load the vectors: %w"
	)

	m, err := word2vec.NewForOptions(opts)
	if err != nil {
		return nil, fmt.Errorf(FAIL1, err)
	}

	// input for Train() is an io.ReadSeeker
	b := bytes.NewReader([]byte(strings.Join(texts, "\n")))
	if err = m.Train(b); err != nil {
		return nil, fmt.Errorf(FAIL2, err)
	}

	// use buffers; skip the disk
	var buf bytes.Buffer
	if err = m.Save(io.Writer(&buf), vector.Agg); err != nil {
		return nil, fmt.Errorf(FAIL3, err)
	}
	embs, err := embedding.Load(io.Reader(&buf))
	if err != nil {
		return nil, fmt.Errorf(FAIL4, err)
	}
	return FromEmbeddings(embs, opts.Dim), nil
}

// FromEmbeddings - wrap an already trained set of word vectors
func FromEmbeddings(embs embedding.Embeddings, dim int) *Word2Vec {
	w := &Word2Vec{dim: dim, words: make(map[string][]float64, len(embs))}
	for _, e := range embs {
		w.words[e.Word] = e.Vector
	}
	return w
}

func (w *Word2Vec) Dimensions() int { return w.dim }

// Known - the size of the trained vocabulary
func (w *Word2Vec) Known() int { return len(w.words) }

func (w *Word2Vec) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make([]float64, w.dim)
		n := 0
		for _, tok := range strings.Fields(strings.ToLower(t)) {
			if wv, ok := w.words[tok]; ok && len(wv) == w.dim {
				for j := range v {
					v[j] += wv[j]
				}
				n++
			}
		}
		if n > 0 {
			for j := range v {
				v[j] /= float64(n)
			}
		}
		out[i] = v
	}
	return out, nil
}
