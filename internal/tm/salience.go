//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

//
// TERM SALIENCE FOR TOPICS THAT ARE NOT FACTORISATIONS
//

// ctfidf - class-based tf-idf with hard labels: tf within the class times log(1 + A/f_v)
// where A is the average number of words per class and f_v the corpus frequency of v
func ctfidf(docs []Document, labels []int, t int, v int) *mat.Dense {
	freq := mat.NewDense(t, v, nil)
	overall := make([]float64, v)
	for i, d := range docs {
		row := freq.RawRowView(labels[i])
		for _, tw := range d.Terms {
			if tw.Term >= v {
				continue
			}
			row[tw.Term] += tw.Weight
			overall[tw.Term] += tw.Weight
		}
	}
	total := 0.0
	for _, f := range overall {
		total += f
	}
	avg := total / float64(t)

	for c := 0; c < t; c++ {
		row := freq.RawRowView(c)
		insum := 0.0
		for _, f := range row {
			insum += f
		}
		for j := range row {
			if row[j] == 0 || overall[j] == 0 {
				row[j] = 0
				continue
			}
			row[j] = row[j] / insum * math.Log(1+avg/overall[j])
		}
	}
	return freq
}

// softCTFIDF - salience from soft memberships: (D^T X) normalised per topic, times log(n / column mass)
func softCTFIDF(docs []Document, docTopic mat.Matrix, v int) *mat.Dense {
	n, t := docTopic.Dims()
	imp := mat.NewDense(t, v, nil)
	for i, d := range docs {
		for c := 0; c < t; c++ {
			w := docTopic.At(i, c)
			if w == 0 {
				continue
			}
			row := imp.RawRowView(c)
			for _, tw := range d.Terms {
				if tw.Term < v {
					row[tw.Term] += w * tw.Weight
				}
			}
		}
	}

	colmass := make([]float64, v)
	for c := 0; c < t; c++ {
		row := imp.RawRowView(c)
		for j, x := range row {
			colmass[j] += math.Abs(x)
		}
	}

	for c := 0; c < t; c++ {
		row := imp.RawRowView(c)
		intopic := eps
		for _, x := range row {
			intopic += math.Abs(x)
		}
		for j := range row {
			idf := math.Log(float64(n) / (colmass[j] + eps))
			row[j] = row[j] / intopic * idf
		}
	}
	return imp
}

// centroidImportance - cosine of every term embedding with every topic centroid
func centroidImportance(cent mat.Matrix, vocab *Vocabulary) (*mat.Dense, error) {
	e, err := vocab.Embeddings()
	if err != nil {
		return nil, err
	}
	return cosineRows(cent, e), nil
}
