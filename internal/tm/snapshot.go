//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"encoding/json"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

//
// SNAPSHOTS
//

// Matrix - a dense matrix in a form that survives JSON
type Matrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// MatrixOf - a row-major copy of m; the zero Matrix for nil
func MatrixOf(m *mat.Dense) Matrix {
	if m == nil {
		return Matrix{}
	}
	r, c := m.Dims()
	out := Matrix{Rows: r, Cols: c, Data: make([]float64, 0, r*c)}
	for i := 0; i < r; i++ {
		out.Data = append(out.Data, m.RawRowView(i)...)
	}
	return out
}

// Dense - the matrix back as gonum; nil when empty
func (x Matrix) Dense() (*mat.Dense, error) {
	if x.Rows == 0 || x.Cols == 0 {
		return nil, nil
	}
	if len(x.Data) != x.Rows*x.Cols {
		return nil, fmt.Errorf("%w: %d values for a %d x %d matrix", ErrDimensionMismatch, len(x.Data), x.Rows, x.Cols)
	}
	d := make([]float64, len(x.Data))
	copy(d, x.Data)
	return mat.NewDense(x.Rows, x.Cols, d), nil
}

// Snapshot - what a fitted model knows, minus the strategy internals needed for Transform
type Snapshot struct {
	ID             string          `json:"id"`
	Created        time.Time       `json:"created"`
	Strategy       string          `json:"strategy"`
	StrategyConfig json.RawMessage `json:"strategyconfig"`
	Config         Config          `json:"config"`
	Vocab          []string        `json:"vocab"`
	TopicTerm      Matrix          `json:"topicterm"`
	DocTopic       Matrix          `json:"doctopic"`
	Batches        int             `json:"batches"`
}

// Snapshot - freeze the interpretable state of the model
func (m *Model) Snapshot() (Snapshot, error) {
	if !m.fitted {
		return Snapshot{}, ErrNotFitted
	}
	raw, err := StrategyConfig(m.strategy)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Created:        time.Now(),
		Strategy:       m.strategy.Name(),
		StrategyConfig: raw,
		Config:         m.cfg,
		Vocab:          m.vocab.Terms(),
		TopicTerm:      MatrixOf(m.strategy.TopicTermMatrix()),
		DocTopic:       MatrixOf(m.docTopic),
		Batches:        m.batches,
	}, nil
}

// Restored - a snapshot turned back into matrices; good for interpretation, not for Transform
type Restored struct {
	Snap      Snapshot
	TopicTerm *mat.Dense
	DocTopic  *mat.Dense
}

// Restore - rebuild the matrices of a snapshot and check them against its vocabulary
func Restore(s Snapshot) (*Restored, error) {
	const (
		FAIL1 = "%w: snapshot has %d topic-term columns but %d vocabulary terms"
		FAIL2 = "%w: snapshot has %d topics but was configured for %d"
	)
	tt, err := s.TopicTerm.Dense()
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, ErrNotFitted
	}
	if s.TopicTerm.Cols != len(s.Vocab) {
		return nil, fmt.Errorf(FAIL1, ErrDimensionMismatch, s.TopicTerm.Cols, len(s.Vocab))
	}
	if s.TopicTerm.Rows != s.Config.NTopics {
		return nil, fmt.Errorf(FAIL2, ErrInvalidTopicCount, s.TopicTerm.Rows, s.Config.NTopics)
	}
	dt, err := s.DocTopic.Dense()
	if err != nil {
		return nil, err
	}
	return &Restored{Snap: s, TopicTerm: tt, DocTopic: dt}, nil
}

func (r *Restored) TopTerms(k int) ([]Topic, error) {
	return TopTermsOf(r.TopicTerm, r.Snap.Vocab, k, false)
}

func (r *Restored) LowestTerms(k int) ([]Topic, error) {
	return TopTermsOf(r.TopicTerm, r.Snap.Vocab, k, true)
}

func (r *Restored) TopicNames() ([]string, error) {
	return TopicNamesOf(r.TopicTerm, r.Snap.Vocab)
}

// Strategy - an unfitted strategy with the snapshot's tuning
func (r *Restored) Strategy() (Strategy, error) {
	return StrategyFromConfig(r.Snap.Strategy, r.Snap.StrategyConfig)
}
