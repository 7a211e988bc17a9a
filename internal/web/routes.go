//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MHA535/turftopic/internal/gen"
	"github.com/MHA535/turftopic/internal/rpt"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/MHA535/turftopic/internal/viz"
	"github.com/MHA535/turftopic/internal/vocab"
	"github.com/labstack/echo/v4"
)

// TextsJS - the body of /transform and /partial
type TextsJS struct {
	Texts []string `json:"texts"`
}

// TransformJS - what /transform sends back
type TransformJS struct {
	Names []string    `json:"names"`
	Rows  [][]float64 `json:"rows"`
}

// fail - report an error with the status it deserves
func fail(c echo.Context, err error) error {
	return gen.JSONerror(c, status(err), err)
}

// intparam - a query parameter as an int, or the default
func intparam(c echo.Context, name string, dflt int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return dflt
}

// RtTopics - the best (or, with lowest=1, the worst) terms of every topic
func (s *Server) RtTopics(c echo.Context) error {
	k := intparam(c, "k", s.cfg.TopK)
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var tt []tm.Topic
	var err error
	if c.QueryParam("lowest") == "1" {
		tt, err = s.model.LowestTerms(k)
	} else {
		tt, err = s.model.TopTerms(k)
	}
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, tt)
}

func (s *Server) RtNames(c echo.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	nn, err := s.model.TopicNames()
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, nn)
}

// RtDocuments - the documents of the last fit that weigh most in one topic
func (s *Server) RtDocuments(c echo.Context) error {
	t, err := strconv.Atoi(c.Param("topic"))
	if err != nil {
		return gen.JSONerror(c, http.StatusBadRequest, err)
	}
	k := intparam(c, "k", s.cfg.TopK)

	s.mtx.Lock()
	defer s.mtx.Unlock()
	ds, err := tm.RankDocuments(s.model.DocTopic(), t, k)
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, ds)
}

// RtTransform - topic vectors for new texts; the model is not changed
func (s *Server) RtTransform(c echo.Context) error {
	var in TextsJS
	if err := c.Bind(&in); err != nil {
		return gen.JSONerror(c, http.StatusBadRequest, err)
	}
	docs, err := vocab.Texts(in.Texts, s.cfg.Stops, s.cfg.MaxTerms)
	if err != nil {
		return fail(c, err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	dt, err := s.model.Transform(c.Request().Context(), docs)
	if err != nil {
		return fail(c, err)
	}
	nn, err := s.model.TopicNames()
	if err != nil {
		return fail(c, err)
	}

	n, _ := dt.Dims()
	out := TransformJS{Names: nn, Rows: make([][]float64, n)}
	for i := 0; i < n; i++ {
		out.Rows[i] = dt.RawRowView(i)
	}
	return gen.JSONresponse(c, out)
}

// RtDistribution - the strongest topics of one text
func (s *Server) RtDistribution(c echo.Context) error {
	var in TextsJS
	if err := c.Bind(&in); err != nil {
		return gen.JSONerror(c, http.StatusBadRequest, err)
	}
	docs, err := vocab.Texts(in.Texts, s.cfg.Stops, s.cfg.MaxTerms)
	if err != nil {
		return fail(c, err)
	}
	k := intparam(c, "k", s.cfg.TopK)

	s.mtx.Lock()
	defer s.mtx.Unlock()
	dist, err := s.model.TopicDistribution(c.Request().Context(), docs[0])
	if err != nil {
		return fail(c, err)
	}
	nn, err := s.model.TopicNames()
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, rpt.DistributionTable(dist, nn, k))
}

// RtPartial - one more online batch; every websocket client hears about it
func (s *Server) RtPartial(c echo.Context) error {
	var in TextsJS
	if err := c.Bind(&in); err != nil {
		return gen.JSONerror(c, http.StatusBadRequest, err)
	}
	docs, err := vocab.Texts(in.Texts, s.cfg.Stops, s.cfg.MaxTerms)
	if err != nil {
		return fail(c, err)
	}

	s.mtx.Lock()
	err = s.model.PartialFit(c.Request().Context(), docs)
	pd := Progress{Batch: s.model.Batches(), Docs: len(docs), Vocab: len(s.model.Vocab())}
	s.mtx.Unlock()
	if err != nil {
		return fail(c, err)
	}

	s.pool.Broadcast(pd)
	return gen.JSONresponse(c, pd)
}

// RtCompass - the concept compass as an html page
func (s *Server) RtCompass(c echo.Context) error {
	x, errx := strconv.Atoi(c.Param("x"))
	y, erry := strconv.Atoi(c.Param("y"))
	if errx != nil || erry != nil {
		return gen.JSONerror(c, http.StatusBadRequest, fmt.Errorf("axes must be integers: %q %q", c.Param("x"), c.Param("y")))
	}

	s.mtx.Lock()
	cp, err := s.model.ConceptCompass(x, y)
	var nn []string
	if err == nil {
		nn, err = s.model.TopicNames()
	}
	s.mtx.Unlock()
	if err != nil {
		return fail(c, err)
	}

	html, err := viz.Compass(cp, nn[x], nn[y], s.cfg.Charts)
	if err != nil {
		return fail(c, err)
	}
	return c.HTML(http.StatusOK, html)
}

// RtDocMap - the documents of the last fit on a plane
func (s *Server) RtDocMap(c echo.Context) error {
	s.mtx.Lock()
	nn, err := s.model.TopicNames()
	dt := s.model.DocTopic()
	s.mtx.Unlock()
	if err != nil {
		return fail(c, err)
	}
	html, err := viz.DocumentMap(dt, nn, s.cfg.Charts)
	if err != nil {
		return fail(c, err)
	}
	return c.HTML(http.StatusOK, html)
}

// RtExport - the topics table as csv, markdown, latex or plain text
func (s *Server) RtExport(c echo.Context) error {
	const (
		CSV   = "text/csv; charset=UTF-8"
		TEXT  = "text/plain; charset=UTF-8"
		LATEX = "application/x-latex; charset=UTF-8"
	)
	format := c.Param("format")
	k := intparam(c, "k", s.cfg.TopK)

	s.mtx.Lock()
	signed := s.model.Strategy().Capabilities().Signed
	t, err := rpt.TopicsTable(s.model, k, signed, c.QueryParam("scores") == "1")
	s.mtx.Unlock()
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := rpt.Export(&buf, t, format, true); err != nil {
		return gen.JSONerror(c, http.StatusBadRequest, err)
	}

	ct := TEXT
	switch format {
	case rpt.FmtCSV:
		ct = CSV
	case rpt.FmtLaTeX:
		ct = LATEX
	}
	return c.Blob(http.StatusOK, ct, buf.Bytes())
}

// RtSnapshot - freeze the model into the store
func (s *Server) RtSnapshot(c echo.Context) error {
	if s.store == nil {
		return fail(c, fmt.Errorf("%w: no store configured", tm.ErrUnsupported))
	}
	s.mtx.Lock()
	snap, err := s.model.Snapshot()
	s.mtx.Unlock()
	if err != nil {
		return fail(c, err)
	}
	id, err := s.store.Save(c.Request().Context(), snap)
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, map[string]string{"id": id})
}

func (s *Server) RtSnapshots(c echo.Context) error {
	if s.store == nil {
		return fail(c, fmt.Errorf("%w: no store configured", tm.ErrUnsupported))
	}
	ml, err := s.store.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, ml)
}

// RtSnapshotTopics - the topics of a stored snapshot; the live model is not touched
func (s *Server) RtSnapshotTopics(c echo.Context) error {
	if s.store == nil {
		return fail(c, fmt.Errorf("%w: no store configured", tm.ErrUnsupported))
	}
	snap, err := s.store.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	r, err := tm.Restore(snap)
	if err != nil {
		return fail(c, err)
	}
	st, err := r.Strategy()
	if err != nil {
		return fail(c, err)
	}
	t, err := rpt.TopicsTable(r, intparam(c, "k", s.cfg.TopK), st.Capabilities().Signed, c.QueryParam("scores") == "1")
	if err != nil {
		return fail(c, err)
	}
	return gen.JSONresponse(c, t)
}

// RtWebsocket - register a client for progress messages
func (s *Server) RtWebsocket(c echo.Context) error {
	// https://echo.labstack.com/cookbook/websocket/
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	cl := &WSClient{Conn: ws, Pool: s.pool}
	s.pool.Add(cl)
	cl.ReadLoop()
	return nil
}
