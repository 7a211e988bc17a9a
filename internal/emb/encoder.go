//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package emb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"sync"

	"github.com/MHA535/turftopic/internal/kw"
)

//
// EMBEDDING PROVIDERS
//

var ErrVectorCount = errors.New("encoder returned the wrong number of vectors")

// Encoder - anything that can turn texts into fixed-length vectors
type Encoder interface {
	// Encode returns one vector per text, in order
	Encode(ctx context.Context, texts []string) ([][]float64, error)
	// Dimensions is the vector length; 0 if not known before the first Encode
	Dimensions() int
}

//
// STUB
//

// Stub - a deterministic encoder with no model behind it
//
// every word maps to a fixed pseudo-random unit vector derived from its hash; a text is the normalised sum of
// its words. Texts that share words are therefore similar, and a word is similar to the texts that contain it.
type Stub struct {
	Dim int
}

func NewStub(dim int) *Stub {
	return &Stub{Dim: dim}
}

func (s *Stub) Dimensions() int { return s.Dim }

func (s *Stub) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make([]float64, s.Dim)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			wv := s.word(w)
			for j := range v {
				v[j] += wv[j]
			}
		}
		out[i] = kw.Normalize(v)
	}
	return out, nil
}

func (s *Stub) word(w string) []float64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(w))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	v := make([]float64, s.Dim)
	for j := range v {
		v[j] = rng.NormFloat64()
	}
	return kw.Normalize(v)
}

//
// CACHE
//

// Backing - persistent storage for cached vectors
type Backing interface {
	GetVector(ctx context.Context, key string) ([]float64, bool, error)
	PutVector(ctx context.Context, key string, v []float64) error
}

// Cached - wraps an Encoder so that each distinct text is encoded once; optionally persists through a Backing
type Cached struct {
	enc   Encoder
	label string
	back  Backing
	mem   map[string][]float64
	mtx   sync.RWMutex
	Hits  int
	Miss  int
}

// NewCached - label distinguishes models that share one Backing
func NewCached(enc Encoder, label string, back Backing) *Cached {
	return &Cached{enc: enc, label: label, back: back, mem: make(map[string][]float64)}
}

func (c *Cached) Dimensions() int { return c.enc.Dimensions() }

func (c *Cached) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	keys := make([]string, len(texts))
	var missing []int

	c.mtx.RLock()
	for i, t := range texts {
		keys[i] = c.key(t)
		if v, ok := c.mem[keys[i]]; ok {
			out[i] = v
		} else {
			missing = append(missing, i)
		}
	}
	c.mtx.RUnlock()

	// [a] the persistent layer
	if c.back != nil && len(missing) > 0 {
		var still []int
		for _, i := range missing {
			v, ok, err := c.back.GetVector(ctx, keys[i])
			if err != nil {
				return nil, err
			}
			if ok {
				out[i] = v
				c.remember(keys[i], v)
			} else {
				still = append(still, i)
			}
		}
		missing = still
	}

	c.mtx.Lock()
	c.Hits += len(texts) - len(missing)
	c.Miss += len(missing)
	c.mtx.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	// [b] the encoder, once per distinct text
	uniq := make(map[string]int)
	var todo []string
	for _, i := range missing {
		if _, ok := uniq[keys[i]]; !ok {
			uniq[keys[i]] = len(todo)
			todo = append(todo, texts[i])
		}
	}
	vecs, err := c.enc.Encode(ctx, todo)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(todo) {
		return nil, fmt.Errorf("%w: %d for %d texts", ErrVectorCount, len(vecs), len(todo))
	}
	for _, i := range missing {
		v := vecs[uniq[keys[i]]]
		out[i] = v
		c.remember(keys[i], v)
	}
	if c.back != nil {
		for k, j := range uniq {
			if err := c.back.PutVector(ctx, k, vecs[j]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (c *Cached) remember(k string, v []float64) {
	c.mtx.Lock()
	c.mem[k] = v
	c.mtx.Unlock()
}

func (c *Cached) key(t string) string {
	h := sha256.Sum256([]byte(c.label + "\x00" + t))
	return hex.EncodeToString(h[:])
}
