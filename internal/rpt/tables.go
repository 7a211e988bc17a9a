//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package rpt

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MHA535/turftopic/internal/gen"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/MHA535/turftopic/internal/vv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/mat"
)

//
// TABLES
//

// Interpreter - anything that can name topics and list their terms: a live model or a restored snapshot
type Interpreter interface {
	TopTerms(k int) ([]tm.Topic, error)
	LowestTerms(k int) ([]tm.Topic, error)
	TopicNames() ([]string, error)
}

// Table - a header and string cells, ready for any export format
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

var printer = message.NewPrinter(language.English)

func score(f float64) string { return printer.Sprintf("%.2f", f) }

// TopicsTable - one row per topic with its best terms; signed adds the negative pole; scores appends each weight
func TopicsTable(src Interpreter, topK int, signed bool, scores bool) (Table, error) {
	const (
		HEAD1 = "Topic ID"
		HEAD2 = "Highest Ranking"
		HEAD3 = "Lowest Ranking"
	)
	top, err := src.TopTerms(topK)
	if err != nil {
		return Table{}, err
	}
	var low []tm.Topic
	if signed {
		if low, err = src.LowestTerms(topK); err != nil {
			return Table{}, err
		}
	}

	t := Table{Title: "Topics", Header: []string{HEAD1, HEAD2}}
	if signed {
		t.Header = append(t.Header, HEAD3)
	}
	for i, tp := range top {
		row := []string{strconv.Itoa(tp.ID), joinTerms(tp.Terms, scores)}
		if signed {
			row = append(row, joinTerms(low[i].Terms, scores))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func joinTerms(ts []tm.TermScore, scores bool) string {
	parts := make([]string, len(ts))
	for i, s := range ts {
		if scores {
			parts[i] = fmt.Sprintf("%s (%s)", s.Term, score(s.Score))
		} else {
			parts[i] = s.Term
		}
	}
	return strings.Join(parts, ", ")
}

// DocumentsTable - the topK highest ranking documents of every topic
func DocumentsTable(docTopic mat.Matrix, texts []string, names []string, topK int) (Table, error) {
	const (
		FAIL1 = "%w: %d documents, %d texts"
	)
	n, t := docTopic.Dims()
	if n != len(texts) {
		return Table{}, fmt.Errorf(FAIL1, tm.ErrDimensionMismatch, n, len(texts))
	}
	tab := Table{Title: "Documents", Header: []string{"Topic", "Document", "Score"}}
	for c := 0; c < t; c++ {
		ranked, err := tm.RankDocuments(docTopic, c, topK)
		if err != nil {
			return Table{}, err
		}
		for _, d := range ranked {
			tab.Rows = append(tab.Rows, []string{label(names, c), Truncate(texts[d.Index]), score(d.Score)})
		}
	}
	return tab, nil
}

// DistributionTable - the topK topics of one text, strongest first
func DistributionTable(dist []float64, names []string, topK int) Table {
	idx := make([]int, len(dist))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return dist[idx[a]] > dist[idx[b]] })
	if topK > 0 && topK < len(idx) {
		idx = idx[:topK]
	}
	tab := Table{Title: "Topic Distribution", Header: []string{"Topic name", "Score"}}
	for _, i := range idx {
		tab.Rows = append(tab.Rows, []string{label(names, i), score(dist[i])})
	}
	return tab
}

// TimelineTable - mean topic weight per bin; one row per bin, one column per topic
func TimelineTable(keys []string, means [][]float64, names []string) Table {
	tab := Table{Title: "Topics over time", Header: []string{"Bin"}}
	if len(means) > 0 {
		for c := range means[0] {
			tab.Header = append(tab.Header, label(names, c))
		}
	}
	for i, k := range keys {
		row := []string{k}
		for _, v := range means[i] {
			row = append(row, score(v))
		}
		tab.Rows = append(tab.Rows, row)
	}
	return tab
}

// Truncate - whitespace collapsed and at most MAXDOCDISPLAYLEN runes
func Truncate(s string) string {
	return gen.TrimRunes(gen.CollapseSpace(s), vv.MAXDOCDISPLAYLEN)
}

func label(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return strconv.Itoa(i)
}
