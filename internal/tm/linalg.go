//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//
// SMALL LINEAR ALGEBRA HELPERS SHARED BY THE STRATEGIES
//

const eps = 1e-10

var errSVD = errors.New("singular value decomposition failed")

// cosineRows - a[i] vs b[j] for every pair of rows
func cosineRows(a, b mat.Matrix) *mat.Dense {
	na := unitRows(a)
	nb := unitRows(b)
	var out mat.Dense
	out.Mul(na, nb.T())
	return &out
}

// unitRows - a copy of m with every row scaled to unit length; zero rows stay zero
func unitRows(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(m)
	for i := 0; i < r; i++ {
		row := out.RawRowView(i)
		n := floats.Norm(row, 2)
		if n > 0 {
			floats.Scale(1/n, row)
		}
	}
	return out
}

// columnMeans - mean of every column
func columnMeans(x mat.Matrix) []float64 {
	_, c := x.Dims()
	means := make([]float64, c)
	for j := 0; j < c; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	return means
}

// centered - x minus the supplied column means
func centered(x mat.Matrix, means []float64) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(x)
	for i := 0; i < r; i++ {
		floats.Sub(out.RawRowView(i), means)
	}
	return out
}

// clipNonNeg - in place max(0, m)
func clipNonNeg(m *mat.Dense) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			if row[j] < 0 || math.IsNaN(row[j]) {
				row[j] = 0
			}
		}
	}
}

// argmaxRows - column index of the largest entry per row
func argmaxRows(m mat.Matrix) []int {
	r, _ := m.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		out[i] = floats.MaxIdx(mat.Row(nil, i, m))
	}
	return out
}

// copyDense - nil-safe deep copy
func copyDense(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.DenseCopyOf(m)
}

//
// PCA
//

// pca - fitted principal components
type pca struct {
	mean       []float64
	components *mat.Dense // k x d
	variance   []float64  // explained variance per component
}

// fitPCA - the k leading principal components of x via a thin SVD of the centred data
func fitPCA(x mat.Matrix, k int) (*pca, error) {
	n, d := x.Dims()
	if k > n || k > d {
		return nil, ErrInvalidTopicCount
	}
	means := columnMeans(x)
	xc := centered(x, means)

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return nil, errSVD
	}
	var v mat.Dense
	svd.VTo(&v) // d x min(n,d)
	sv := svd.Values(nil)

	comp := mat.NewDense(k, d, nil)
	vars := make([]float64, k)
	for i := 0; i < k; i++ {
		comp.SetRow(i, mat.Col(nil, i, &v))
		den := float64(n - 1)
		if den < 1 {
			den = 1
		}
		vars[i] = sv[i] * sv[i] / den
	}
	return &pca{mean: means, components: comp, variance: vars}, nil
}

// transform - project x onto the components
func (p *pca) transform(x mat.Matrix) *mat.Dense {
	xc := centered(x, p.mean)
	var out mat.Dense
	out.Mul(xc, p.components.T())
	return &out
}

//
// K-MEANS
//

// kmeans - Lloyd iterations from a k-means++ seeding; returns labels and k x d centroids
func kmeans(x *mat.Dense, k int, rng *rand.Rand, maxIter int) ([]int, *mat.Dense) {
	n, d := x.Dims()
	cent := kmeansPP(x, k, rng)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for it := 0; it < maxIter; it++ {
		changed := false
		for i := 0; i < n; i++ {
			best, bestd := 0, math.Inf(1)
			row := x.RawRowView(i)
			for c := 0; c < k; c++ {
				dd := floats.Distance(row, cent.RawRowView(c), 2)
				if dd < bestd {
					best, bestd = c, dd
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		counts := make([]int, k)
		sums := mat.NewDense(k, d, nil)
		for i := 0; i < n; i++ {
			floats.Add(sums.RawRowView(labels[i]), x.RawRowView(i))
			counts[labels[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// an emptied cluster keeps its old centroid
				continue
			}
			floats.Scale(1/float64(counts[c]), sums.RawRowView(c))
			cent.SetRow(c, sums.RawRowView(c))
		}
	}
	return labels, cent
}

// kmeansPP - k-means++ seeding: each new centre drawn with probability proportional to squared distance
func kmeansPP(x *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := x.Dims()
	cent := mat.NewDense(k, d, nil)
	cent.SetRow(0, x.RawRowView(rng.Intn(n)))

	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	for c := 1; c < k; c++ {
		prev := cent.RawRowView(c - 1)
		total := 0.0
		for i := 0; i < n; i++ {
			dd := floats.Distance(x.RawRowView(i), prev, 2)
			dd *= dd
			if dd < dist[i] {
				dist[i] = dd
			}
			total += dist[i]
		}
		pick := n - 1
		if total > 0 {
			r := rng.Float64() * total
			for i := 0; i < n; i++ {
				r -= dist[i]
				if r <= 0 {
					pick = i
					break
				}
			}
		} else {
			pick = rng.Intn(n)
		}
		cent.SetRow(c, x.RawRowView(pick))
	}
	return cent
}

// silhouette - mean silhouette coefficient; at most maxn points (evenly strided) are scored
func silhouette(x *mat.Dense, labels []int, k int, maxn int) float64 {
	n, _ := x.Dims()
	stride := 1
	if n > maxn {
		stride = n / maxn
	}
	var sample []int
	for i := 0; i < n; i += stride {
		sample = append(sample, i)
	}

	total := 0.0
	for _, i := range sample {
		sums := make([]float64, k)
		counts := make([]int, k)
		for _, j := range sample {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(x.RawRowView(i), x.RawRowView(j), 2)
			counts[labels[j]]++
		}
		own := labels[i]
		if counts[own] == 0 {
			continue // singleton: s = 0
		}
		a := sums[own] / float64(counts[own])
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}
		if math.IsInf(b, 1) {
			continue
		}
		total += (b - a) / math.Max(a, b)
	}
	return total / float64(len(sample))
}

// centroids - mean row per label
func centroids(x mat.Matrix, labels []int, k int) *mat.Dense {
	_, d := x.Dims()
	out := mat.NewDense(k, d, nil)
	counts := make([]float64, k)
	for i, l := range labels {
		floats.Add(out.RawRowView(l), mat.Row(nil, i, x))
		counts[l]++
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			floats.Scale(1/counts[c], out.RawRowView(c))
		}
	}
	return out
}
