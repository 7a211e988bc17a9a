//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package viz

import (
	"errors"
	"fmt"

	"github.com/MHA535/turftopic/internal/mm"
	"github.com/MHA535/turftopic/internal/tm"
	"github.com/MHA535/turftopic/internal/vv"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	Msg      = mm.NewMessageMaker()
	ErrEmpty = errors.New("nothing to plot")
)

// Options - how the charts are drawn
type Options struct {
	Width      string
	Height     string
	Font       string
	Standalone bool
}

func DefaultOptions() Options {
	return Options{Width: vv.CHRTWIDTH, Height: vv.CHRTHEIGHT, Font: "Noto Sans", Standalone: true}
}

// globals - the settings every chart shares: size, title and a save-as-image button
func globals(o Options, title, subtitle, fn string) []charts.GlobalOpts {
	const (
		SAVEFILETYPE = "png"
		SAVEBUTTON   = "Save to file"
	)

	t := charts.WithTitleOpts(opts.Title{
		Title:    title,
		Subtitle: subtitle,
		TitleStyle: &opts.TextStyle{
			FontStyle:  "normal",
			FontFamily: o.Font,
		},
		Bottom: "5%",
		Left:   "5%",
	})

	tb := charts.WithToolboxOpts(opts.Toolbox{
		Show:   true,
		Orient: "horizontal",
		Left:   "right",
		Feature: &opts.ToolBoxFeature{
			SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
				Show: true, Type: SAVEFILETYPE, Name: fn, Title: SAVEBUTTON,
			},
		},
	})

	in := charts.WithInitializationOpts(opts.Initialization{Width: o.Width, Height: o.Height, PageTitle: title})
	return []charts.GlobalOpts{in, t, tb, charts.WithLegendOpts(opts.Legend{Show: true})}
}

// Compass - the concept compass as a scatter plot: terms labelled, documents as dots
func Compass(c tm.Compass, xname, yname string, o Options) (string, error) {
	const (
		TITLE   = "Concept compass"
		SUBT    = "axis %d against axis %d"
		TERMS   = "terms"
		DOCS    = "documents"
		FN      = "compass"
		SYMTERM = 6
		SYMDOC  = 4
	)

	if len(c.Terms) == 0 && len(c.Docs) == 0 {
		return "", ErrEmpty
	}

	sc := charts.NewScatter()
	g := globals(o, TITLE, fmt.Sprintf(SUBT, c.AxisX, c.AxisY), FN)
	g = append(g,
		charts.WithXAxisOpts(opts.XAxis{Name: xname, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yname, Type: "value"}))
	sc.SetGlobalOptions(g...)

	sc.AddSeries(TERMS, points(c.Terms, SYMTERM),
		charts.WithLabelOpts(opts.Label{Show: true, Position: "right", FontFamily: o.Font, Formatter: "{b}"}))
	if len(c.Docs) > 0 {
		sc.AddSeries(DOCS, points(c.Docs, SYMDOC))
	}

	Msg.PEEK(fmt.Sprintf("compass: %d terms, %d documents", len(c.Terms), len(c.Docs)))
	return page(TITLE, o.Standalone, sc)
}

func points(pp []tm.Point, size int) []opts.ScatterData {
	sd := make([]opts.ScatterData, len(pp))
	for i, p := range pp {
		sd[i] = opts.ScatterData{Name: p.Label, Value: []interface{}{p.X, p.Y}, SymbolSize: size}
	}
	return sd
}

// DocumentMap - documents projected onto the first two principal components of their topic vectors,
// one series per dominant topic
func DocumentMap(docTopic *mat.Dense, names []string, o Options) (string, error) {
	const (
		TITLE = "Documents by topic"
		SUBT  = "%d documents, %d topics"
		FN    = "documents"
		FAIL1 = "%w: %d topic names for %d topics"
	)

	if docTopic == nil {
		return "", ErrEmpty
	}
	n, t := docTopic.Dims()
	if n == 0 || t == 0 {
		return "", ErrEmpty
	}
	if len(names) != t {
		return "", fmt.Errorf(FAIL1, tm.ErrDimensionMismatch, len(names), t)
	}

	xy := Project2D(docTopic)

	series := make([][]opts.ScatterData, t)
	for i := 0; i < n; i++ {
		row := docTopic.RawRowView(i)
		best := 0
		for k := range row {
			if row[k] > row[best] {
				best = k
			}
		}
		series[best] = append(series[best], opts.ScatterData{
			Name:       fmt.Sprintf("document %d", i),
			Value:      []interface{}{xy.At(i, 0), xy.At(i, 1)},
			SymbolSize: 6,
		})
	}

	sc := charts.NewScatter()
	g := globals(o, TITLE, fmt.Sprintf(SUBT, n, t), FN)
	g = append(g,
		charts.WithXAxisOpts(opts.XAxis{Name: "PC1", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "PC2", Type: "value"}))
	sc.SetGlobalOptions(g...)

	for k, s := range series {
		if len(s) == 0 {
			continue
		}
		sc.AddSeries(names[k], s)
	}
	return page(TITLE, o.Standalone, sc)
}

// Project2D - rows of m on their two leading principal components; falls back to the raw
// leading columns (zero padded) when PCA cannot be done
func Project2D(m *mat.Dense) *mat.Dense {
	n, t := m.Dims()
	out := mat.NewDense(n, 2, nil)

	var pc stat.PC
	if n > 1 && t > 1 && pc.PrincipalComponents(m, nil) {
		var vecs mat.Dense
		pc.VectorsTo(&vecs)

		centred := mat.DenseCopyOf(m)
		for j := 0; j < t; j++ {
			col := mat.Col(nil, j, m)
			mu := stat.Mean(col, nil)
			for i := 0; i < n; i++ {
				centred.Set(i, j, col[i]-mu)
			}
		}
		out.Mul(centred, vecs.Slice(0, t, 0, 2))
		return out
	}

	for i := 0; i < n; i++ {
		for j := 0; j < 2 && j < t; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// Timeline - the mean topic weight of every bin as one line per topic
func Timeline(keys []string, means [][]float64, names []string, o Options) (string, error) {
	const (
		TITLE = "Topics over time"
		SUBT  = "%d bins"
		FN    = "timeline"
		FAIL1 = "%w: %d bins but %d keys"
		FAIL2 = "%w: bin %d has %d topics, expected %d"
	)

	if len(means) == 0 || len(names) == 0 {
		return "", ErrEmpty
	}
	if len(keys) != len(means) {
		return "", fmt.Errorf(FAIL1, tm.ErrDimensionMismatch, len(means), len(keys))
	}
	for i, m := range means {
		if len(m) != len(names) {
			return "", fmt.Errorf(FAIL2, tm.ErrDimensionMismatch, i, len(m), len(names))
		}
	}

	ln := charts.NewLine()
	g := globals(o, TITLE, fmt.Sprintf(SUBT, len(keys)), FN)
	g = append(g, charts.WithYAxisOpts(opts.YAxis{Name: "weight", Type: "value"}))
	ln.SetGlobalOptions(g...)
	ln.SetXAxis(keys)

	for k, nm := range names {
		ld := make([]opts.LineData, len(means))
		for i := range means {
			ld[i] = opts.LineData{Value: means[i][k]}
		}
		ln.AddSeries(nm, ld)
	}
	return page(TITLE, o.Standalone, ln)
}
