//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/store"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/MHA535/turftopic/internal/viz"
	"github.com/MHA535/turftopic/internal/vv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

var Msg = mm.NewMessageMaker()

// Settings - how the server behaves
type Settings struct {
	Host      string
	Port      int
	EchoLog   int // 0: none; 1: terse; 2: with remote ip; 3: echo's default
	Gzip      bool
	RateLimit int // requests per second per ip; 0 disables
	TopK      int
	Stops     []string
	MaxTerms  int // candidate terms kept per incoming text; 0 keeps all
	Charts    viz.Options
}

func DefaultSettings() Settings {
	return Settings{
		Host:      vv.SERVEDFROMHOST,
		Port:      vv.SERVEDFROMPORT,
		EchoLog:   vv.DEFAULTECHOLOG,
		Gzip:      true,
		RateLimit: vv.MAXECHOREQPERSECONDPERIP,
		TopK:      vv.DEFAULTTOPTERMS,
		Charts:    viz.DefaultOptions(),
	}
}

// Server - one model behind HTTP; the mutex serialises every use of the model
type Server struct {
	mtx   sync.Mutex
	model *tm.Model
	store store.Store
	pool  *WSPool
	cfg   Settings
	e     *echo.Echo
}

// NewServer - st may be nil, in which case /snapshot reports that it is unsupported
func NewServer(m *tm.Model, st store.Store, cfg Settings) *Server {
	s := &Server{model: m, store: st, pool: NewWSPool(), cfg: cfg}
	s.e = s.build()
	return s
}

// Handler - the echo instance, for tests or for mounting elsewhere
func (s *Server) Handler() http.Handler { return s.e }

// Pool - the websocket clients that hear about fitting progress
func (s *Server) Pool() *WSPool { return s.pool }

// Start - serve; this blocks and does not return while the server remains alive
func (s *Server) Start() error {
	const (
		MSG1 = "serving on http://%s:%d"
	)
	Msg.MAND(fmt.Sprintf(MSG1, s.cfg.Host, s.cfg.Port))
	return s.e.Start(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
}

func (s *Server) build() *echo.Echo {
	// https://echo.labstack.com/guide/
	const (
		LLOGFMT = "r: ${status}\tt: ${latency_human}\tu: ${uri}\n"
		RLOGFMT = "i: ${remote_ip}\t r: ${status}\tt: ${latency_human}\tu: ${uri}\n"
	)

	//
	// SETUP
	//

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if s.cfg.EchoLog == 3 {
		e.Use(middleware.Logger())
	} else if s.cfg.EchoLog == 2 {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Format: RLOGFMT}))
	} else if s.cfg.EchoLog == 1 {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Format: LLOGFMT}))
	}

	if s.cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.cfg.RateLimit))))
	}

	e.Use(middleware.Recover())

	if s.cfg.Gzip {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: 5,
			// gzip and the websocket upgrade do not mix
			Skipper: func(c echo.Context) bool { return c.Path() == "/ws" },
		}))
	}

	//
	// ROUTES
	//

	// [a] interpretation

	e.GET("/topics", s.RtTopics) // "u: /topics?k=5&lowest=1"
	e.GET("/names", s.RtNames)
	e.GET("/documents/:topic", s.RtDocuments) // "u: /documents/2?k=5"

	// [b] inference and fitting

	e.POST("/transform", s.RtTransform)       // {"texts": ["..."]}
	e.POST("/distribution", s.RtDistribution) // {"texts": ["..."]}: the first text only
	e.POST("/partial", s.RtPartial)           // {"texts": ["..."]}

	// [c] output

	e.GET("/compass/:x/:y", s.RtCompass) // "u: /compass/0/1"
	e.GET("/docmap", s.RtDocMap)
	e.GET("/export/:format", s.RtExport) // "u: /export/markdown?k=8"

	// [d] storage

	e.POST("/snapshot", s.RtSnapshot)
	e.GET("/snapshots", s.RtSnapshots)
	e.GET("/snapshots/:id", s.RtSnapshotTopics) // "u: /snapshots/{uuid}?k=5"

	// [e] websocket

	e.GET("/ws", s.RtWebsocket)

	return e
}

// status - which HTTP status an error deserves
func status(err error) int {
	switch {
	case errors.Is(err, tm.ErrNotFitted), errors.Is(err, tm.ErrUnsupported):
		return http.StatusConflict
	case errors.Is(err, tm.ErrEmptyBatch), errors.Is(err, tm.ErrDimensionMismatch),
		errors.Is(err, tm.ErrInvalidTopicCount), errors.Is(err, viz.ErrEmpty):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
