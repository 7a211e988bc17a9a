//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import "math"

// DocFreq - running document frequencies over everything the model has been fitted on
type DocFreq struct {
	DF        map[string]int `json:"df"`
	TotalDocs int            `json:"totaldocs"`
}

func NewDocFreq() *DocFreq {
	return &DocFreq{DF: make(map[string]int)}
}

// AddDocument - each distinct term increments its frequency once
func (d *DocFreq) AddDocument(terms []string) {
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		if !seen[t] {
			d.DF[t]++
			seen[t] = true
		}
	}
	d.TotalDocs++
}

// IDF - smoothed inverse document frequency: log((1+N)/(1+df)) + 1
func (d *DocFreq) IDF(term string) float64 {
	return math.Log(float64(1+d.TotalDocs)/float64(1+d.DF[term])) + 1
}

// MaxIDF - the IDF of a term that has never been seen
func (d *DocFreq) MaxIDF() float64 {
	return math.Log(float64(1+d.TotalDocs)) + 1
}

func (d *DocFreq) clone() *DocFreq {
	n := &DocFreq{DF: make(map[string]int, len(d.DF)), TotalDocs: d.TotalDocs}
	for k, v := range d.DF {
		n.DF[k] = v
	}
	return n
}
