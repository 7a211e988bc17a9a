//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package emb

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/e-gun/wego/pkg/embedding"
)

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestStub_DeterministicAndUnit(t *testing.T) {
	s := NewStub(16)
	a, err := s.Encode(context.Background(), []string{"the cat sat", "the cat sat"})
	if err != nil {
		t.Fatal(err)
	}
	for j := range a[0] {
		if a[0][j] != a[1][j] {
			t.Fatalf("stub not deterministic at %d", j)
		}
	}
	if n := math.Sqrt(dot(a[0], a[0])); math.Abs(n-1) > 1e-9 {
		t.Errorf("expected unit vector, norm %v", n)
	}
}

func TestStub_WordsResembleTheirText(t *testing.T) {
	s := NewStub(64)
	v, _ := s.Encode(context.Background(), []string{"rocket launch orbit", "rocket", "banana"})
	if dot(v[0], v[1]) <= dot(v[0], v[2]) {
		t.Errorf("a word in the text should be closer than one outside it")
	}
}

type countingEncoder struct {
	calls int
	seen  int
}

func (c *countingEncoder) Dimensions() int { return 2 }

func (c *countingEncoder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	c.calls++
	c.seen += len(texts)
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t)), 1}
	}
	return out, nil
}

type mapBacking map[string][]float64

func (m mapBacking) GetVector(_ context.Context, k string) ([]float64, bool, error) {
	v, ok := m[k]
	return v, ok, nil
}

func (m mapBacking) PutVector(_ context.Context, k string, v []float64) error {
	m[k] = v
	return nil
}

func TestCached_EncodesOncePerText(t *testing.T) {
	inner := &countingEncoder{}
	c := NewCached(inner, "count", nil)
	ctx := context.Background()

	if _, err := c.Encode(ctx, []string{"a", "bb", "a"}); err != nil {
		t.Fatal(err)
	}
	if inner.seen != 2 {
		t.Errorf("expected 2 distinct texts sent, got %d", inner.seen)
	}
	got, err := c.Encode(ctx, []string{"bb", "a"})
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("second call should be served from memory; encoder called %d times", inner.calls)
	}
	if got[0][0] != 2 || got[1][0] != 1 {
		t.Errorf("wrong cached vectors %v", got)
	}
}

func TestCached_UsesBacking(t *testing.T) {
	back := mapBacking{}
	first := NewCached(&countingEncoder{}, "m", back)
	if _, err := first.Encode(context.Background(), []string{"hello"}); err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 {
		t.Fatalf("expected one persisted vector, got %d", len(back))
	}

	inner := &countingEncoder{}
	second := NewCached(inner, "m", back)
	if _, err := second.Encode(context.Background(), []string{"hello"}); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 0 {
		t.Errorf("backing should have satisfied the request")
	}
}

type failingEncoder struct{}

var errProvider = errors.New("provider down")

func (failingEncoder) Dimensions() int { return 0 }
func (failingEncoder) Encode(context.Context, []string) ([][]float64, error) {
	return nil, errProvider
}

func TestCached_PropagatesProviderError(t *testing.T) {
	c := NewCached(failingEncoder{}, "f", nil)
	if _, err := c.Encode(context.Background(), []string{"x"}); !errors.Is(err, errProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestOllama_Encode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := ollamaResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float64{float64(i), 1, 2})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL+"/", "test", 5*time.Second)
	o.BatchSize = 2
	got, err := o.Encode(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || o.Dimensions() != 3 {
		t.Fatalf("got %d vectors of dim %d", len(got), o.Dimensions())
	}
	// the third text is the first of the second request
	if got[2][0] != 0 {
		t.Errorf("unexpected batching: %v", got)
	}
}

func TestOllama_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, err := NewOllama(srv.URL, "m", time.Second).Encode(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWord2Vec_MeanOfKnownWords(t *testing.T) {
	embs := embedding.Embeddings{
		{Word: "red", Dim: 2, Vector: []float64{1, 0}},
		{Word: "blue", Dim: 2, Vector: []float64{0, 1}},
	}
	w := FromEmbeddings(embs, 2)
	got, err := w.Encode(context.Background(), []string{"Red blue green", "green"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0][0] != 0.5 || got[0][1] != 0.5 {
		t.Errorf("expected the mean of red and blue, got %v", got[0])
	}
	if got[1][0] != 0 || got[1][1] != 0 {
		t.Errorf("unknown words should give a zero vector, got %v", got[1])
	}
}

type shortEncoder struct{}

func (shortEncoder) Dimensions() int { return 1 }
func (shortEncoder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	return [][]float64{{1}}, nil
}

func TestCached_WrongVectorCount(t *testing.T) {
	c := NewCached(shortEncoder{}, "short", nil)
	_, err := c.Encode(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, ErrVectorCount) {
		t.Fatalf("expected ErrVectorCount, got %v", err)
	}
	if c.Miss != 3 {
		t.Errorf("Miss = %d", c.Miss)
	}
	if _, err := c.Encode(context.Background(), []string{"a"}); err != nil {
		t.Errorf("one text, one vector: %v", err)
	}
}
