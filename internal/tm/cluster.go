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
	"gonum.org/v1/gonum/mat"
)

//
// CLUSTERING TOPIC MODEL
//

const (
	ImportanceCTFIDF     = "c-tf-idf"
	ImportanceSoftCTFIDF = "soft-c-tf-idf"
	ImportanceCentroid   = "centroid"
	ReduceAgglomerative  = "agglomerative"
	ReduceSmallest       = "smallest"
	silhouetteSample     = 500
)

// ClusterConfig - tuning for the clustering strategy
type ClusterConfig struct {
	NTopics         int    `json:"ntopics" yaml:"ntopics"`
	Clusters        int    `json:"clusters" yaml:"clusters"` // 0: choose by silhouette
	MaxAutoClusters int    `json:"maxautoclusters" yaml:"maxautoclusters"`
	ReduceDims      int    `json:"reducedims" yaml:"reducedims"` // 0: cluster the raw embeddings
	Reduction       string `json:"reduction" yaml:"reduction"`
	Importance      string `json:"importance" yaml:"importance"`
	MaxIter         int    `json:"maxiter" yaml:"maxiter"`
	Seed            int64  `json:"seed" yaml:"seed"`
}

func DefaultClusterConfig(t int) ClusterConfig {
	return ClusterConfig{
		NTopics:         t,
		MaxAutoClusters: vv.MAXAUTOCLUSTERS,
		Reduction:       vv.DEFAULTREDUCTION,
		Importance:      vv.DEFAULTIMPORTANCE,
		MaxIter:         vv.KMEANSMAXITER,
		Seed:            vv.DEFAULTSEED,
	}
}

// Clustering - k-means over document embeddings; clusters are merged down to NTopics when there are more
type Clustering struct {
	cfg       ClusterConfig
	labels    []int
	centroids *mat.Dense // T x d, original embedding space
	topicterm *mat.Dense
	found     int
}

func NewClustering(cfg ClusterConfig) (*Clustering, error) {
	const (
		FAIL1 = "%w: unknown feature importance %q"
		FAIL2 = "%w: unknown reduction method %q"
	)
	if cfg.NTopics <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTopicCount, cfg.NTopics)
	}
	if cfg.Clusters > 0 && cfg.Clusters < cfg.NTopics {
		return nil, fmt.Errorf("%w: %d clusters cannot yield %d topics", ErrInvalidTopicCount, cfg.Clusters, cfg.NTopics)
	}
	switch cfg.Importance {
	case "":
		cfg.Importance = ImportanceCTFIDF
	case ImportanceCTFIDF, ImportanceSoftCTFIDF, ImportanceCentroid:
	default:
		return nil, fmt.Errorf(FAIL1, ErrUnsupported, cfg.Importance)
	}
	switch cfg.Reduction {
	case "":
		cfg.Reduction = ReduceAgglomerative
	case ReduceAgglomerative, ReduceSmallest:
	default:
		return nil, fmt.Errorf(FAIL2, ErrUnsupported, cfg.Reduction)
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = vv.KMEANSMAXITER
	}
	if cfg.MaxAutoClusters <= 0 {
		cfg.MaxAutoClusters = vv.MAXAUTOCLUSTERS
	}
	return &Clustering{cfg: cfg}, nil
}

func (c *Clustering) Name() string { return "cluster" }

func (c *Clustering) NTopics() int { return c.cfg.NTopics }

func (c *Clustering) Config() ClusterConfig { return c.cfg }

func (c *Clustering) Capabilities() Capabilities {
	return Capabilities{TermEmbeddings: c.cfg.Importance == ImportanceCentroid}
}

func (c *Clustering) Reset() {
	c.labels, c.centroids, c.topicterm, c.found = nil, nil, nil, 0
}

func (c *Clustering) TopicTermMatrix() *mat.Dense { return copyDense(c.topicterm) }

// Labels - the topic of every document of the last Fit
func (c *Clustering) Labels() []int {
	out := make([]int, len(c.labels))
	copy(out, c.labels)
	return out
}

// Found - the number of clusters before reduction
func (c *Clustering) Found() int { return c.found }

// Fit - re-cluster from scratch
func (c *Clustering) Fit(b Batch) error {
	const (
		FAIL1 = "%w: %d topics requested from %d documents"
		FAIL2 = "%w: clustering needs a vocabulary"
		MSG1  = "cluster: silhouette chose k=%d (%.4f)"
		MSG2  = "cluster: %d clusters reduced to %d topics (%s)"
	)

	x, err := b.embeddings()
	if err != nil {
		return err
	}
	n, d := x.Dims()
	t := c.cfg.NTopics
	if t > n {
		return fmt.Errorf(FAIL1, ErrInvalidTopicCount, t, n)
	}
	v := b.vocabLen()
	if v == 0 {
		return fmt.Errorf(FAIL2, ErrEmptyBatch)
	}

	space := x
	if r := c.cfg.ReduceDims; r > 0 && r < d && r <= n {
		p, err := fitPCA(x, r)
		if err != nil {
			return err
		}
		space = p.transform(x)
	}

	k := c.cfg.Clusters
	if k > n {
		k = n
	}
	var labels []int
	if k > 0 {
		labels, _ = kmeans(space, k, rand.New(rand.NewSource(c.cfg.Seed)), c.cfg.MaxIter)
	} else {
		hi := n - 1
		if hi > c.cfg.MaxAutoClusters {
			hi = c.cfg.MaxAutoClusters
		}
		k = t
		labels, _ = kmeans(space, k, rand.New(rand.NewSource(c.cfg.Seed)), c.cfg.MaxIter)
		if hi > t {
			best := silhouette(space, labels, k, silhouetteSample)
			for kk := t + 1; kk <= hi; kk++ {
				ll, _ := kmeans(space, kk, rand.New(rand.NewSource(c.cfg.Seed)), c.cfg.MaxIter)
				if s := silhouette(space, ll, kk, silhouetteSample); s > best {
					best, k, labels = s, kk, ll
				}
			}
			Msg.PEEK(fmt.Sprintf(MSG1, k, best))
		}
	}
	found := k

	if k > t {
		labels = reduceClusters(space, labels, k, t, c.cfg.Reduction)
		Msg.PEEK(fmt.Sprintf(MSG2, k, t, c.cfg.Reduction))
	}

	cent := centroids(x, labels, t)

	var tt *mat.Dense
	switch c.cfg.Importance {
	case ImportanceCentroid:
		tt, err = centroidImportance(cent, b.Vocab)
		if err != nil {
			return err
		}
	case ImportanceSoftCTFIDF:
		sim := cosineRows(x, cent)
		clipNonNeg(sim)
		tt = softCTFIDF(b.Docs, sim, v)
	default:
		tt = ctfidf(b.Docs, labels, t, v)
	}

	c.labels = labels
	c.centroids = cent
	c.topicterm = tt
	c.found = found
	return nil
}

// Transform - cosine similarity of each document to each topic centroid
func (c *Clustering) Transform(b Batch) (*mat.Dense, error) {
	if c.centroids == nil {
		return nil, ErrNotFitted
	}
	x, err := b.embeddings()
	if err != nil {
		return nil, err
	}
	if _, d := x.Dims(); d != c.centroids.RawMatrix().Cols {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, d, c.centroids.RawMatrix().Cols)
	}
	return cosineRows(x, c.centroids), nil
}

// TopicTermFor - the same salience computed over a subset of documents
func (c *Clustering) TopicTermFor(b Batch, docTopic *mat.Dense) (*mat.Dense, error) {
	if c.centroids == nil {
		return nil, ErrNotFitted
	}
	t := c.cfg.NTopics
	v := c.topicterm.RawMatrix().Cols
	switch c.cfg.Importance {
	case ImportanceCentroid:
		x, err := b.embeddings()
		if err != nil {
			return nil, err
		}
		return centroidImportance(centroids(x, argmaxRows(docTopic), t), b.Vocab)
	case ImportanceSoftCTFIDF:
		sim := mat.DenseCopyOf(docTopic)
		clipNonNeg(sim)
		return softCTFIDF(b.Docs, sim, v), nil
	default:
		return ctfidf(b.Docs, argmaxRows(docTopic), t, v), nil
	}
}

// reduceClusters - merge clusters until only t remain
func reduceClusters(x *mat.Dense, labels []int, k int, t int, method string) []int {
	out := make([]int, len(labels))
	copy(out, labels)

	for k > t {
		cent := centroids(x, out, k)
		sim := cosineRows(cent, cent)
		sizes := make([]int, k)
		for _, l := range out {
			sizes[l]++
		}

		var src, dst int
		switch method {
		case ReduceSmallest:
			src = 0
			for i := 1; i < k; i++ {
				if sizes[i] < sizes[src] {
					src = i
				}
			}
			best := math.Inf(-1)
			for i := 0; i < k; i++ {
				if i != src && sim.At(src, i) > best {
					best, dst = sim.At(src, i), i
				}
			}
		default:
			best := math.Inf(-1)
			for i := 0; i < k; i++ {
				for j := i + 1; j < k; j++ {
					if sim.At(i, j) > best {
						best, dst, src = sim.At(i, j), i, j
					}
				}
			}
		}

		for i, l := range out {
			if l == src {
				out[i] = dst
			}
			if out[i] > src {
				out[i]--
			}
		}
		k--
	}
	return out
}
