//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MHA535/turftopic/internal/corpus"
	"github.com/MHA535/turftopic/internal/dyn"
	"github.com/MHA535/turftopic/internal/emb"
	"github.com/MHA535/turftopic/internal/gen"
	"github.com/MHA535/turftopic/internal/rpt"
	"github.com/MHA535/turftopic/internal/store"
	"github.com/MHA535/turftopic/internal/str"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/MHA535/turftopic/internal/viz"
	"github.com/MHA535/turftopic/internal/vocab"
	"github.com/MHA535/turftopic/internal/vv"
	"github.com/MHA535/turftopic/internal/web"
	"gonum.org/v1/gonum/mat"
)

const (
	COMPASSFILE  = "compass.html"
	TIMELINEFILE = "timeline.html"
	DOCMAPFILE   = "documents.html"
)

// run - read, fit, report; then optionally track, plot, store and serve
func run(ctx context.Context, cfg str.CurrentConfiguration, start time.Time) error {
	const (
		FAIL1 = "no corpus: use '-c {file}'"
		MSG1  = "%d documents read from '%s'"
		MSG2  = "%d documents vectorised"
		MSG3  = "%s: %d topics fitted (vocabulary: %d)"
		MSG4  = "snapshot saved as %s"
	)

	previous := time.Now()

	if cfg.Corpus == "" {
		return errors.New(FAIL1)
	}
	docs, err := corpus.Read(cfg.Corpus)
	if err != nil {
		return err
	}
	Msg.Timer("A1", fmt.Sprintf(MSG1, len(docs), cfg.Corpus), start, previous)

	previous = time.Now()
	var stops []string
	if cfg.UseStops {
		stops = vocab.LoadStops()
	}
	bodies := corpus.Bodies(docs)
	texts, err := vocab.Texts(bodies, stops, cfg.MaxTerms)
	if err != nil {
		return err
	}
	Msg.Timer("A2", fmt.Sprintf(MSG2, len(texts)), start, previous)

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	enc, err := buildEncoder(cfg, bodies, st)
	if err != nil {
		return err
	}
	newmodel := func() (*tm.Model, error) { return buildModel(cfg, enc) }
	model, err := newmodel()
	if err != nil {
		return err
	}

	previous = time.Now()
	dt, err := fit(ctx, cfg, model, texts)
	if err != nil {
		return err
	}
	Msg.Timer("A3", fmt.Sprintf(MSG3, cfg.Strategy, cfg.Topics, len(model.Vocab())), start, previous)
	describe(model)

	if err := report(cfg, model, dt, bodies); err != nil {
		return err
	}

	if cfg.Bins > 0 || cfg.BinWidth != "" {
		previous = time.Now()
		if err := dynamic(ctx, cfg, model, newmodel, docs, texts); err != nil {
			return err
		}
		Msg.Timer("A4", "dynamic model built", start, previous)
	}

	if cfg.Compass != "" {
		if err := compass(cfg, model, dt); err != nil {
			return err
		}
	}

	if st != nil {
		snap, err := model.Snapshot()
		if err != nil {
			return err
		}
		id, err := st.Save(ctx, snap)
		if err != nil {
			return err
		}
		Msg.NOTE(fmt.Sprintf(MSG4, id))
	}

	if cfg.Serve {
		srv := web.NewServer(model, st, webSettings(cfg, stops))
		return srv.Start()
	}
	return nil
}

// openStore - nil when no store is configured
func openStore(ctx context.Context, cfg str.CurrentConfiguration) (store.Store, error) {
	switch cfg.Store {
	case "":
		return nil, nil
	case "sqlite":
		return store.OpenSQLite(ctx, cfg.SQLiteDB)
	case "pg":
		return store.OpenPG(ctx, cfg.PGLogin)
	default:
		return nil, fmt.Errorf("unknown store %q: use sqlite or pg", cfg.Store)
	}
}

// buildEncoder - the configured encoder behind a cache; the cache persists through the store when there is one
func buildEncoder(cfg str.CurrentConfiguration, bodies []string, st store.Store) (emb.Encoder, error) {
	const (
		MSG1 = "word2vec trained: %d words known"
	)

	var back emb.Backing
	if b, ok := st.(emb.Backing); ok {
		back = b
	}

	switch cfg.Encoder {
	case "stub":
		return emb.NewCached(emb.NewStub(cfg.StubDim), fmt.Sprintf("stub-%d", cfg.StubDim), back), nil
	case "ollama":
		o := emb.NewOllama(cfg.OllamaURL, cfg.OllamaModel, vv.OLLAMATIMEOUT*time.Second)
		return emb.NewCached(o, "ollama-"+cfg.OllamaModel, back), nil
	case "w2v":
		w, err := emb.TrainWord2Vec(bodies, emb.DefaultW2VOptions())
		if err != nil {
			return nil, err
		}
		Msg.FYI(fmt.Sprintf(MSG1, w.Known()))
		// the vectors belong to this corpus alone: nothing to share with later runs
		return emb.NewCached(w, "w2v", nil), nil
	default:
		return nil, fmt.Errorf("%w: unknown encoder %q", tm.ErrUnsupported, cfg.Encoder)
	}
}

func buildModel(cfg str.CurrentConfiguration, enc emb.Encoder) (*tm.Model, error) {
	s, err := tm.NewSeededStrategy(cfg.Strategy, cfg.Topics, cfg.Seed)
	if err != nil {
		return nil, err
	}
	mc := tm.Config{
		NTopics:    cfg.Topics,
		TopN:       cfg.TopN,
		MinDF:      cfg.MinDF,
		KeywordIDF: cfg.KeywordIDF,
	}
	return tm.NewModel(mc, s, enc)
}

// fit - one pass, or online batches over several epochs; returns the topic vectors of the whole corpus
func fit(ctx context.Context, cfg str.CurrentConfiguration, m *tm.Model, texts []tm.Text) (*mat.Dense, error) {
	const (
		MSG1 = "%s cannot learn online; fitting in one pass"
		MSG2 = "epoch %d batch %d: %d documents (vocabulary: %d)"
	)

	online := cfg.BatchSize > 0 && cfg.BatchSize < len(texts)
	if online && !m.Strategy().Capabilities().Incremental {
		Msg.WARN(fmt.Sprintf(MSG1, cfg.Strategy))
		online = false
	}
	if !online {
		return m.FitTransform(ctx, texts)
	}

	epochs := cfg.Epochs
	if epochs < 1 {
		epochs = 1
	}
	for ep := 0; ep < epochs; ep++ {
		for i, b := range gen.ChunkSlice(texts, cfg.BatchSize) {
			if err := m.PartialFit(ctx, b); err != nil {
				return nil, err
			}
			Msg.PEEK(fmt.Sprintf(MSG2, ep+1, i+1, len(b), len(m.Vocab())))
		}
	}
	return m.Record(ctx, texts)
}

// describe - what some strategies can say about their own fit
func describe(m *tm.Model) {
	const (
		MSG1 = "%d clusters found, %d kept; the largest holds %d documents"
		MSG2 = "mean log-likelihood: %.4f"
	)
	switch s := m.Strategy().(type) {
	case *tm.Clustering:
		sizes := make(map[int]int)
		largest := 0
		for _, l := range s.Labels() {
			sizes[l]++
			if sizes[l] > largest {
				largest = sizes[l]
			}
		}
		Msg.FYI(fmt.Sprintf(MSG1, s.Found(), len(sizes), largest))
	case *tm.GMM:
		Msg.FYI(fmt.Sprintf(MSG2, s.LogLikelihood()))
	}
}

// report - the topics and the documents that best represent them
func report(cfg str.CurrentConfiguration, m *tm.Model, dt *mat.Dense, bodies []string) error {
	t, err := rpt.TopicsTable(m, cfg.TopTerms, m.Strategy().Capabilities().Signed, cfg.Scores)
	if err != nil {
		return err
	}
	if err := rpt.Export(os.Stdout, t, cfg.ExportFmt, cfg.BlackAndWhite); err != nil {
		return err
	}

	names, err := m.TopicNames()
	if err != nil {
		return err
	}
	d, err := rpt.DocumentsTable(dt, bodies, names, vv.DEFAULTTOPDOCS)
	if err != nil {
		return err
	}
	return rpt.Export(os.Stdout, d, cfg.ExportFmt, cfg.BlackAndWhite)
}

// dynamic - topic weights per time bin; documents without timestamps are binned by position instead
func dynamic(ctx context.Context, cfg str.CurrentConfiguration, m *tm.Model, factory func() (*tm.Model, error),
	docs []corpus.Doc, texts []tm.Text) error {
	const (
		FAIL1  = "bin width must be a positive duration such as '168h', not %q"
		MSG1   = "no timestamps in the corpus: binning by position"
		MSG2   = "wrote %s"
		MSG3   = "%d bins: %v"
		DAYFMT = "2006-01-02"
		HRFMT  = "2006-01-02 15:04"
	)

	var keys []int64
	labels := func(k int64) string { return time.Unix(0, k).UTC().Format(DAYFMT) }

	ts, timed := corpus.Times(docs)
	switch {
	case timed && cfg.BinWidth != "":
		d, err := time.ParseDuration(cfg.BinWidth)
		if err != nil || d <= 0 {
			return fmt.Errorf(FAIL1, cfg.BinWidth)
		}
		keys = dyn.TruncateKeys(ts, d)
		if d < 24*time.Hour {
			labels = func(k int64) string { return time.Unix(0, k).UTC().Format(HRFMT) }
		}
	case timed:
		keys = dyn.EqualWidthKeys(ts, cfg.Bins)
	default:
		Msg.NOTE(MSG1)
		n := cfg.Bins
		if n <= 0 {
			n = vv.DEFAULTPOSBINS
		}
		keys = make([]int64, len(texts))
		width := (len(texts) + n - 1) / n
		for i := range keys {
			keys[i] = int64(i / width)
		}
		labels = func(k int64) string { return strconv.FormatInt(k, 10) }
	}

	tr := dyn.Tracker[int64]{Mode: dyn.SharedBasis, Model: m}
	if cfg.DynRefit {
		tr = dyn.Tracker[int64]{Mode: dyn.IndependentRefit, Factory: factory}
	}

	cur, err := tr.Bins(ctx, texts, keys)
	if err != nil {
		return err
	}
	Msg.PEEK(fmt.Sprintf(MSG3, cur.Len(), cur.Keys()))
	bins, err := cur.All(ctx)
	if err != nil {
		return err
	}

	names, err := m.TopicNames()
	if err != nil {
		return err
	}
	bk := make([]string, len(bins))
	means := make([][]float64, len(bins))
	for i, b := range bins {
		bk[i] = labels(b.Key)
		means[i] = b.Mean()
	}

	if err := rpt.Export(os.Stdout, rpt.TimelineTable(bk, means, names), cfg.ExportFmt, cfg.BlackAndWhite); err != nil {
		return err
	}

	html, err := viz.Timeline(bk, means, names, chartOptions(cfg))
	if err != nil {
		return err
	}
	if err := os.WriteFile(TIMELINEFILE, []byte(html), vv.WRITEPERMS); err != nil {
		return err
	}
	Msg.FYI(fmt.Sprintf(MSG2, TIMELINEFILE))
	return nil
}

// compass - "x,y" names the two axes; also writes the document map
func compass(cfg str.CurrentConfiguration, m *tm.Model, dt *mat.Dense) error {
	const (
		FAIL1 = "compass wants two axes as 'x,y', not %q"
		MSG1  = "wrote %s"
	)

	parts := strings.Split(cfg.Compass, ",")
	if len(parts) != 2 {
		return fmt.Errorf(FAIL1, cfg.Compass)
	}
	x, errx := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, erry := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errx != nil || erry != nil {
		return fmt.Errorf(FAIL1, cfg.Compass)
	}

	c, err := m.ConceptCompass(x, y)
	if err != nil {
		return err
	}
	names, err := m.TopicNames()
	if err != nil {
		return err
	}

	html, err := viz.Compass(c, names[x], names[y], chartOptions(cfg))
	if err != nil {
		return err
	}
	if err := os.WriteFile(COMPASSFILE, []byte(html), vv.WRITEPERMS); err != nil {
		return err
	}
	Msg.FYI(fmt.Sprintf(MSG1, COMPASSFILE))

	dm, err := viz.DocumentMap(dt, names, chartOptions(cfg))
	if err != nil {
		return err
	}
	if err := os.WriteFile(DOCMAPFILE, []byte(dm), vv.WRITEPERMS); err != nil {
		return err
	}
	Msg.FYI(fmt.Sprintf(MSG1, DOCMAPFILE))
	return nil
}

func chartOptions(cfg str.CurrentConfiguration) viz.Options {
	o := viz.DefaultOptions()
	o.Width = cfg.ChartWidth
	o.Height = cfg.ChartHeight
	return o
}

func webSettings(cfg str.CurrentConfiguration, stops []string) web.Settings {
	s := web.DefaultSettings()
	s.Host = cfg.HostIP
	s.Port = cfg.HostPort
	s.EchoLog = cfg.EchoLog
	s.Gzip = cfg.Gzip
	s.TopK = cfg.TopTerms
	s.Stops = stops
	s.MaxTerms = cfg.MaxTerms
	s.Charts = chartOptions(cfg)
	return s
}
