//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/MHA535/turftopic/internal/emb"
	"gonum.org/v1/gonum/mat"
)

var corpusA = []string{
	"rocket launch orbit satellite engine",
	"orbit satellite telescope planet moon",
	"rocket engine fuel launch pad",
	"planet moon orbit telescope star",
	"bread flour oven yeast dough",
	"oven bake bread cake sugar",
	"cake sugar butter flour bake",
	"dough yeast flour bread knead",
	"vote election senate law policy",
	"senate law court policy judge",
}

var corpusB = []string{
	"court judge law trial verdict",
	"election vote campaign senate party",
	"star galaxy telescope orbit planet",
	"butter sugar cookie bake oven",
}

func texts(bodies []string) []Text {
	out := make([]Text, len(bodies))
	for i, b := range bodies {
		out[i] = Text{Body: b, Terms: strings.Fields(b)}
	}
	return out
}

func newTestModel(t *testing.T, name string, topics int) *Model {
	t.Helper()
	s, err := NewStrategy(name, topics)
	if err != nil {
		t.Fatalf("NewStrategy(%s): %v", name, err)
	}
	m, err := NewModel(Config{NTopics: topics, TopN: 10, MinDF: 1}, s, emb.NewStub(32))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func assertNonNegative(t *testing.T, what string, m mat.Matrix) {
	t.Helper()
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v < 0 || math.IsNaN(v) {
				t.Fatalf("%s[%d,%d] = %v", what, i, j, v)
			}
		}
	}
}

func TestKeyNMF_FiveTopicsTenDocs(t *testing.T) {
	m := newTestModel(t, StratKeyNMF, 5)
	dt, err := m.FitTransform(context.Background(), texts(corpusA))
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}
	if r, c := dt.Dims(); r != 10 || c != 5 {
		t.Fatalf("doc-topic is %dx%d, want 10x5", r, c)
	}
	tt := m.TopicTermMatrix()
	if r, c := tt.Dims(); r != 5 || c != len(m.Vocab()) {
		t.Fatalf("topic-term is %dx%d, want 5x%d", r, c, len(m.Vocab()))
	}
	assertNonNegative(t, "topic-term", tt)
	assertNonNegative(t, "doc-topic", dt)
	for i := 0; i < 10; i++ {
		if s := mat.Sum(dt.RowView(i)); s <= 0 {
			t.Errorf("row %d of doc-topic sums to %v", i, s)
		}
	}
}

func TestKeyNMF_NonNegativeAfterPartialFits(t *testing.T) {
	m := newTestModel(t, StratKeyNMF, 3)
	ctx := context.Background()
	for i, batch := range [][]string{corpusA[:5], corpusA[5:], corpusB} {
		if err := m.PartialFit(ctx, texts(batch)); err != nil {
			t.Fatalf("PartialFit %d: %v", i, err)
		}
		assertNonNegative(t, "topic-term", m.TopicTermMatrix())
		assertNonNegative(t, "doc-topic", m.DocTopic())
	}
	if m.Batches() != 3 {
		t.Errorf("Batches() = %d, want 3", m.Batches())
	}
}

func TestPartialFit_DiffersFromSingleFit(t *testing.T) {
	ctx := context.Background()
	one := newTestModel(t, StratKeyNMF, 3)
	if err := one.Fit(ctx, texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	two := newTestModel(t, StratKeyNMF, 3)
	if err := two.PartialFit(ctx, texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(one.TopicTermMatrix(), two.TopicTermMatrix()) {
		t.Fatal("Fit and a first PartialFit on the same batch should agree")
	}
	if err := two.PartialFit(ctx, texts(corpusB)); err != nil {
		t.Fatal(err)
	}
	a, b := one.TopicTermMatrix(), two.TopicTermMatrix()
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar == br && ac == bc && mat.Equal(a, b) {
		t.Fatal("a second batch left the topic-term matrix unchanged")
	}
}

func TestTransform_RepeatableAndSideEffectFree(t *testing.T) {
	for _, name := range []string{StratKeyNMF, StratS3, StratCluster, StratGMM} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			m := newTestModel(t, name, 3)
			if err := m.Fit(ctx, texts(corpusA)); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			before := m.TopicTermMatrix()
			vocab := len(m.Vocab())

			x1, err := m.Transform(ctx, texts(corpusB))
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			x2, err := m.Transform(ctx, texts(corpusB))
			if err != nil {
				t.Fatalf("Transform: %v", err)
			}
			if r, c := x1.Dims(); r != len(corpusB) || c != 3 {
				t.Fatalf("transform is %dx%d, want %dx3", r, c, len(corpusB))
			}
			if !mat.Equal(x1, x2) {
				t.Error("repeated Transform differs")
			}
			if !mat.Equal(before, m.TopicTermMatrix()) {
				t.Error("Transform changed the topic-term matrix")
			}
			if len(m.Vocab()) != vocab {
				t.Errorf("Transform grew the vocabulary from %d to %d", vocab, len(m.Vocab()))
			}
		})
	}
}

func TestTopicTermShape_AllStrategies(t *testing.T) {
	for _, name := range []string{StratKeyNMF, StratS3, StratCluster, StratGMM} {
		m := newTestModel(t, name, 3)
		if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
			t.Fatalf("%s Fit: %v", name, err)
		}
		r, c := m.TopicTermMatrix().Dims()
		if r != 3 || c != len(m.Vocab()) {
			t.Errorf("%s topic-term is %dx%d, want 3x%d", name, r, c, len(m.Vocab()))
		}
		if r, c := m.DocTopic().Dims(); r != len(corpusA) || c != 3 {
			t.Errorf("%s doc-topic is %dx%d", name, r, c)
		}
	}
}

func TestPartialFit_BatchOnlyStrategies(t *testing.T) {
	for _, name := range []string{StratS3, StratCluster, StratGMM} {
		m := newTestModel(t, name, 3)
		err := m.PartialFit(context.Background(), texts(corpusA))
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("%s PartialFit: got %v, want ErrUnsupported", name, err)
		}
		if m.Fitted() {
			t.Errorf("%s: a rejected PartialFit marked the model fitted", name)
		}
	}
}

func TestTransform_BeforeFit(t *testing.T) {
	for _, name := range []string{StratKeyNMF, StratS3, StratCluster, StratGMM} {
		m := newTestModel(t, name, 3)
		if _, err := m.Transform(context.Background(), texts(corpusB)); !errors.Is(err, ErrNotFitted) {
			t.Errorf("%s: got %v, want ErrNotFitted", name, err)
		}
		if _, err := m.TopTerms(5); !errors.Is(err, ErrNotFitted) {
			t.Errorf("%s TopTerms: got %v, want ErrNotFitted", name, err)
		}
	}
}

func TestPartialFit_DimensionMismatchLeavesModelAlone(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, StratKeyNMF, 3)
	if err := m.PartialFit(ctx, texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	tt := m.TopicTermMatrix()
	vocab := m.Vocab()
	df := m.DocFreq()

	bad := texts(corpusB)
	bad[2].Embedding = []float64{1, 2, 3}
	bad[2].Terms = append(bad[2].Terms, "unseenterm")
	err := m.PartialFit(ctx, bad)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("got %v, want ErrDimensionMismatch", err)
	}
	if !mat.Equal(tt, m.TopicTermMatrix()) {
		t.Error("topic-term matrix changed")
	}
	if len(vocab) != len(m.Vocab()) {
		t.Error("vocabulary changed")
	}
	if m.DocFreq().TotalDocs != df.TotalDocs {
		t.Error("document frequencies changed")
	}
	if m.Batches() != 1 {
		t.Errorf("Batches() = %d, want 1", m.Batches())
	}
	if _, err := m.Transform(ctx, bad); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Transform: got %v, want ErrDimensionMismatch", err)
	}
}

func TestModel_EmptyBatches(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, StratKeyNMF, 3)
	if err := m.Fit(ctx, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Fit: got %v", err)
	}
	if err := m.PartialFit(ctx, []Text{}); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("PartialFit: got %v", err)
	}
	if err := m.Fit(ctx, texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Transform(ctx, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Transform: got %v", err)
	}
}

func TestModel_NoTermsIsEmpty(t *testing.T) {
	m := newTestModel(t, StratKeyNMF, 2)
	docs := []Text{{Body: "alpha beta"}, {Body: "gamma delta"}}
	if err := m.Fit(context.Background(), docs); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("got %v, want ErrEmptyBatch", err)
	}
}

func TestModel_InvalidTopicCount(t *testing.T) {
	if _, err := NewKeyNMF(DefaultKeyNMFConfig(0)); !errors.Is(err, ErrInvalidTopicCount) {
		t.Errorf("NewKeyNMF: %v", err)
	}
	s, _ := NewStrategy(StratKeyNMF, 3)
	if _, err := NewModel(Config{NTopics: 0}, s, nil); !errors.Is(err, ErrInvalidTopicCount) {
		t.Errorf("NewModel T=0: %v", err)
	}
	if _, err := NewModel(Config{NTopics: 4}, s, nil); !errors.Is(err, ErrInvalidTopicCount) {
		t.Errorf("NewModel with mismatched strategy: %v", err)
	}
	for _, name := range []string{StratS3, StratCluster, StratGMM} {
		m := newTestModel(t, name, 20)
		if err := m.Fit(context.Background(), texts(corpusA)); !errors.Is(err, ErrInvalidTopicCount) {
			t.Errorf("%s with 20 topics from 10 documents: %v", name, err)
		}
	}
	if _, err := NewStrategy("lda", 3); !errors.Is(err, ErrUnsupported) {
		t.Errorf("unknown strategy: %v", err)
	}
}

type failingEncoder struct{ err error }

func (f failingEncoder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	return nil, f.err
}

func (f failingEncoder) Dimensions() int { return 0 }

func TestModel_EncoderErrorPassesThrough(t *testing.T) {
	boom := errors.New("provider down")
	s, _ := NewStrategy(StratKeyNMF, 2)
	m, err := NewModel(Config{NTopics: 2}, s, failingEncoder{boom})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.PartialFit(context.Background(), texts(corpusA)); err != boom {
		t.Errorf("got %v, want the provider error itself", err)
	}
}

func TestModel_PrecomputedEmbeddingsSkipEncoder(t *testing.T) {
	stub := emb.NewStub(16)
	docs := texts(corpusA)
	for i := range docs {
		v, _ := stub.Encode(context.Background(), []string{docs[i].Body})
		docs[i].Embedding = v[0]
	}
	s, _ := NewStrategy(StratGMM, 2)
	m, err := NewModel(Config{NTopics: 2}, s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Fit(context.Background(), docs); err != nil {
		t.Fatalf("Fit without an encoder: %v", err)
	}
	if m.Dimensions() != 16 {
		t.Errorf("Dimensions() = %d", m.Dimensions())
	}
}

func TestGMM_RowsSumToOne(t *testing.T) {
	m := newTestModel(t, StratGMM, 3)
	dt, err := m.FitTransform(context.Background(), texts(corpusA))
	if err != nil {
		t.Fatal(err)
	}
	x, err := m.Transform(context.Background(), texts(corpusB))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []*mat.Dense{dt, x} {
		r, _ := d.Dims()
		for i := 0; i < r; i++ {
			if s := mat.Sum(d.RowView(i)); math.Abs(s-1) > 1e-6 {
				t.Errorf("row %d sums to %v", i, s)
			}
		}
	}
	if !m.Strategy().Capabilities().Probabilistic {
		t.Error("gmm should report itself probabilistic")
	}
}

func TestS3_Compass(t *testing.T) {
	m := newTestModel(t, StratS3, 3)
	if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	c, err := m.ConceptCompass(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Terms) != len(m.Vocab()) || len(c.Docs) != len(corpusA) {
		t.Errorf("compass has %d terms and %d docs", len(c.Terms), len(c.Docs))
	}
	if _, err := m.ConceptCompass(0, 3); !errors.Is(err, ErrInvalidTopicCount) {
		t.Errorf("axis out of range: %v", err)
	}
	low, err := m.LowestTerms(3)
	if err != nil {
		t.Fatal(err)
	}
	high, _ := m.TopTerms(3)
	if low[0].Terms[0].Score > high[0].Terms[0].Score {
		t.Error("lowest term outranks the highest")
	}

	k := newTestModel(t, StratKeyNMF, 3)
	if err := k.Fit(context.Background(), texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	if _, err := k.ConceptCompass(0, 1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("keynmf compass: %v", err)
	}
}

func TestS3_TermsAndDocumentsShareOrigin(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, StratS3, 3)
	if err := m.Fit(ctx, texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	j, ok := m.vocab.Index("orbit")
	if !ok {
		t.Fatal("orbit is not in the vocabulary")
	}
	dt, err := m.Transform(ctx, []Text{{Body: "orbit", Embedding: m.vocab.Vector(j)}})
	if err != nil {
		t.Fatal(err)
	}
	tt := m.TopicTermMatrix()
	for c := 0; c < 3; c++ {
		if math.Abs(dt.At(0, c)-tt.At(c, j)) > 1e-9 {
			t.Errorf("axis %d: term at %v, a document with the same embedding at %v", c, tt.At(c, j), dt.At(0, c))
		}
	}
}

func TestS3_PCAOrdersByVariance(t *testing.T) {
	cfg := DefaultS3Config(3)
	cfg.Method = "pca"
	s, err := NewS3(cfg)
	if err != nil {
		t.Fatal(err)
	}
	m, _ := NewModel(Config{NTopics: 3}, s, emb.NewStub(32))
	if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	sc := s.Scores()
	for i := 1; i < len(sc); i++ {
		if sc[i] > sc[i-1] {
			t.Errorf("scores out of order: %v", sc)
		}
	}
}

func TestClustering_ReducesToT(t *testing.T) {
	for _, red := range []string{ReduceAgglomerative, ReduceSmallest} {
		cfg := DefaultClusterConfig(2)
		cfg.Clusters = 5
		cfg.Reduction = red
		c, err := NewClustering(cfg)
		if err != nil {
			t.Fatal(err)
		}
		m, _ := NewModel(Config{NTopics: 2}, c, emb.NewStub(32))
		if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
			t.Fatalf("%s: %v", red, err)
		}
		if c.Found() != 5 {
			t.Errorf("%s: found %d clusters, want 5", red, c.Found())
		}
		for i, l := range c.Labels() {
			if l < 0 || l >= 2 {
				t.Errorf("%s: document %d has label %d", red, i, l)
			}
		}
		assertNonNegative(t, "c-tf-idf", m.TopicTermMatrix())
	}
	if _, err := NewClustering(ClusterConfig{NTopics: 3, Clusters: 2}); !errors.Is(err, ErrInvalidTopicCount) {
		t.Errorf("fewer clusters than topics: %v", err)
	}
	if _, err := NewClustering(ClusterConfig{NTopics: 3, Importance: "bogus"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("bad importance: %v", err)
	}
}

func TestClustering_Importances(t *testing.T) {
	for _, imp := range []string{ImportanceSoftCTFIDF, ImportanceCentroid} {
		cfg := DefaultClusterConfig(2)
		cfg.Importance = imp
		c, err := NewClustering(cfg)
		if err != nil {
			t.Fatal(err)
		}
		m, _ := NewModel(Config{NTopics: 2}, c, emb.NewStub(32))
		if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
			t.Fatalf("%s: %v", imp, err)
		}
		if r, cc := m.TopicTermMatrix().Dims(); r != 2 || cc != len(m.Vocab()) {
			t.Errorf("%s: topic-term is %dx%d", imp, r, cc)
		}
	}
}

func TestModel_TopicDistribution(t *testing.T) {
	m := newTestModel(t, StratKeyNMF, 4)
	if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	v, err := m.TopicDistribution(context.Background(), Text{Body: "rocket orbit moon", Terms: []string{"rocket", "orbit", "moon"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(v) != 4 {
		t.Errorf("distribution has %d entries", len(v))
	}
	names, err := m.TopicNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 4 || !strings.HasPrefix(names[3], "3_") {
		t.Errorf("names: %v", names)
	}
}

func TestModel_KeywordIDFAndMinDF(t *testing.T) {
	s, _ := NewStrategy(StratKeyNMF, 2)
	m, err := NewModel(Config{NTopics: 2, TopN: 3, MinDF: 2, KeywordIDF: true}, s, emb.NewStub(32))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
		t.Fatal(err)
	}
	df := m.DocFreq()
	if df.TotalDocs != 10 {
		t.Errorf("TotalDocs = %d", df.TotalDocs)
	}
	// terms below MinDF stay in the vocabulary but never receive weight
	tt := m.TopicTermMatrix()
	for j, term := range m.Vocab() {
		if df.DF[term] >= 2 {
			continue
		}
		for c := 0; c < 2; c++ {
			if tt.At(c, j) > 1e-6 {
				t.Errorf("term %q with df %d has weight %v in topic %d", term, df.DF[term], tt.At(c, j), c)
			}
		}
	}
}

func TestKeyNMF_UnusedNewTermsCarryNoWeight(t *testing.T) {
	voc := NewVocabulary()
	for _, w := range []string{"orbit", "rocket", "bread", "oven"} {
		voc.add(w, nil)
	}
	first := Batch{Vocab: voc, Docs: []Document{
		{Terms: TermWeights{{Term: 0, Weight: 1}, {Term: 1, Weight: 0.5}}},
		{Terms: TermWeights{{Term: 2, Weight: 1}, {Term: 3, Weight: 0.7}}},
	}}
	k, err := NewKeyNMF(DefaultKeyNMFConfig(2))
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Fit(first); err != nil {
		t.Fatalf("first Fit: %v", err)
	}

	grown := voc.clone()
	for _, w := range []string{"launch", "dough", "cookie", "verdict"} {
		grown.add(w, nil)
	}
	second := Batch{Vocab: grown, Docs: []Document{
		{Terms: TermWeights{{Term: 0, Weight: 1}, {Term: 4, Weight: 0.8}}},
		{Terms: TermWeights{{Term: 2, Weight: 1}, {Term: 5, Weight: 0.6}}},
	}}
	if err := k.Fit(second); err != nil {
		t.Fatalf("second Fit: %v", err)
	}

	h := k.TopicTermMatrix()
	for _, j := range []int{6, 7} {
		for c := 0; c < 2; c++ {
			if v := h.At(c, j); v != 0 {
				t.Errorf("topic %d gives %q weight %v without it ever being a keyword", c, grown.Term(j), v)
			}
		}
	}
	if mat.Sum(h.ColView(4)) <= 0 {
		t.Error("a keyword of the second batch has no weight")
	}
}

func TestNewSeededStrategy_SeedMatters(t *testing.T) {
	fitWith := func(seed int64) *mat.Dense {
		s, err := NewSeededStrategy(StratKeyNMF, 3, seed)
		if err != nil {
			t.Fatal(err)
		}
		m, err := NewModel(Config{NTopics: 3, TopN: 10, MinDF: 1}, s, emb.NewStub(32))
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Fit(context.Background(), texts(corpusA)); err != nil {
			t.Fatalf("Fit with seed %d: %v", seed, err)
		}
		return m.TopicTermMatrix()
	}
	if mat.Equal(fitWith(1), fitWith(99)) {
		t.Error("seeds 1 and 99 gave the same topic-term matrix")
	}
	if !mat.Equal(fitWith(7), fitWith(7)) {
		t.Error("the same seed gave different topic-term matrices")
	}
	s, _ := NewSeededStrategy(StratGMM, 2, 42)
	if s.(*GMM).Config().Seed != 42 {
		t.Errorf("GMM seed = %d", s.(*GMM).Config().Seed)
	}
}

func TestRecord_WholeCorpusAfterOnlineFit(t *testing.T) {
	ctx := context.Background()
	m := newTestModel(t, StratKeyNMF, 3)
	all := texts(append(append([]string{}, corpusA...), corpusB...))
	for _, b := range [][]Text{all[:5], all[5:10], all[10:]} {
		if err := m.PartialFit(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	if r, _ := m.DocTopic().Dims(); r != 4 {
		t.Fatalf("after the last batch doc-topic has %d rows, want 4", r)
	}
	dt, err := m.Record(ctx, all)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if r, c := m.DocTopic().Dims(); r != len(all) || c != 3 {
		t.Fatalf("recorded doc-topic is %dx%d, want %dx3", r, c, len(all))
	}
	if !mat.Equal(dt, m.DocTopic()) {
		t.Error("Record returned something other than what it kept")
	}
	if _, err := m.Record(ctx, nil); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("Record(nil): %v", err)
	}
	if r, _ := m.DocTopic().Dims(); r != len(all) {
		t.Error("a failed Record replaced the doc-topic matrix")
	}
}
