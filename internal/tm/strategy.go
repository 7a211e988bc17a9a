//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"encoding/json"
	"fmt"

	"github.com/MHA535/turftopic/internal/vv"
)

const (
	StratKeyNMF  = "keynmf"
	StratS3      = "s3"
	StratCluster = "cluster"
	StratGMM     = "gmm"
)

// NewStrategy - a strategy with its default tuning, by name
func NewStrategy(name string, t int) (Strategy, error) {
	return NewSeededStrategy(name, t, vv.DEFAULTSEED)
}

// NewSeededStrategy - as NewStrategy but every random start draws from seed
func NewSeededStrategy(name string, t int, seed int64) (Strategy, error) {
	switch name {
	case StratKeyNMF:
		c := DefaultKeyNMFConfig(t)
		c.Seed = seed
		return NewKeyNMF(c)
	case StratS3:
		c := DefaultS3Config(t)
		c.Seed = seed
		return NewS3(c)
	case StratCluster:
		c := DefaultClusterConfig(t)
		c.Seed = seed
		return NewClustering(c)
	case StratGMM:
		c := DefaultGMMConfig(t)
		c.Seed = seed
		return NewGMM(c)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrUnsupported, name)
	}
}

// StrategyConfig - the tuning of a strategy as JSON
func StrategyConfig(s Strategy) (json.RawMessage, error) {
	var cfg any
	switch st := s.(type) {
	case *KeyNMF:
		cfg = st.Config()
	case *S3:
		cfg = st.Config()
	case *Clustering:
		cfg = st.Config()
	case *GMM:
		cfg = st.Config()
	default:
		return nil, fmt.Errorf("%w: no configuration for %q", ErrUnsupported, s.Name())
	}
	return json.Marshal(cfg)
}

// StrategyFromConfig - rebuild an unfitted strategy from its name and StrategyConfig output
func StrategyFromConfig(name string, raw json.RawMessage) (Strategy, error) {
	const (
		FAIL1 = "%w: cannot read %s configuration: %v"
	)
	bad := func(err error) (Strategy, error) {
		return nil, fmt.Errorf(FAIL1, ErrUnsupported, name, err)
	}
	switch name {
	case StratKeyNMF:
		var c KeyNMFConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return bad(err)
		}
		return NewKeyNMF(c)
	case StratS3:
		var c S3Config
		if err := json.Unmarshal(raw, &c); err != nil {
			return bad(err)
		}
		return NewS3(c)
	case StratCluster:
		var c ClusterConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return bad(err)
		}
		return NewClustering(c)
	case StratGMM:
		var c GMMConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return bad(err)
		}
		return NewGMM(c)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrUnsupported, name)
	}
}
