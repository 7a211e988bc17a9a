//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package viz

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/MHA535/turftopic/internal/tm"
	"github.com/go-echarts/go-echarts/v2/charts"
	"gonum.org/v1/gonum/mat"
)

func TestCompass(t *testing.T) {
	c := tm.Compass{
		AxisX: 0, AxisY: 1,
		Terms: []tm.Point{{Label: "rocket", X: 0.5, Y: -0.2}, {Label: "bread", X: -0.4, Y: 0.3}},
		Docs:  []tm.Point{{Label: "document 0", X: 0.1, Y: 0.1}},
	}
	html, err := Compass(c, "space", "baking", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<html>", "echarts.init", "rocket", "bread", "Concept compass"} {
		if !strings.Contains(html, want) {
			t.Errorf("output lacks %q", want)
		}
	}
	if strings.Contains(html, "__f__") {
		t.Error("function markers were not stripped")
	}

	o := DefaultOptions()
	o.Standalone = false
	frag, err := Compass(c, "x", "y", o)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(frag, "<html>") {
		t.Error("fragment should not carry a page wrapper")
	}

	if _, err := Compass(tm.Compass{}, "x", "y", o); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty compass: %v", err)
	}
}

func TestDocumentMap(t *testing.T) {
	dt := mat.NewDense(4, 3, []float64{
		0.8, 0.1, 0.1,
		0.7, 0.2, 0.1,
		0.1, 0.8, 0.1,
		0.1, 0.1, 0.8,
	})
	names := []string{"0_space", "1_bread", "2_vote"}
	html, err := DocumentMap(dt, names, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if !strings.Contains(html, n) {
			t.Errorf("output lacks series %q", n)
		}
	}
	if _, err := DocumentMap(dt, names[:2], DefaultOptions()); !errors.Is(err, tm.ErrDimensionMismatch) {
		t.Errorf("short names: %v", err)
	}
	if _, err := DocumentMap(nil, nil, DefaultOptions()); !errors.Is(err, ErrEmpty) {
		t.Errorf("nil matrix: %v", err)
	}
}

func TestProject2D(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{
		1, 1,
		2, 2,
		3, 3,
	})
	p := Project2D(m)
	r, c := p.Dims()
	if r != 3 || c != 2 {
		t.Fatalf("dims %d x %d", r, c)
	}
	// points on a line: all variance on the first component
	for i := 0; i < 3; i++ {
		if math.Abs(p.At(i, 1)) > 1e-9 {
			t.Errorf("row %d second component %v", i, p.At(i, 1))
		}
	}
	if math.Abs(p.At(0, 0)+p.At(2, 0)) > 1e-9 {
		t.Error("projection should be centred")
	}

	one := Project2D(mat.NewDense(1, 3, []float64{0.2, 0.3, 0.5}))
	if one.At(0, 0) != 0.2 || one.At(0, 1) != 0.3 {
		t.Error("single row should fall back to its leading columns")
	}
}

func TestTimeline(t *testing.T) {
	keys := []string{"2020", "2021"}
	means := [][]float64{{0.6, 0.4}, {0.3, 0.7}}
	html, err := Timeline(keys, means, []string{"0_a", "1_b"}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "2021") || !strings.Contains(html, "1_b") {
		t.Error("keys or series missing")
	}
	if _, err := Timeline(keys[:1], means, []string{"0_a", "1_b"}, DefaultOptions()); !errors.Is(err, tm.ErrDimensionMismatch) {
		t.Errorf("key mismatch: %v", err)
	}
	if _, err := Timeline(nil, nil, nil, DefaultOptions()); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: %v", err)
	}
}

func TestPage_TakesAnyCharter(t *testing.T) {
	ln := charts.NewLine()
	ln.SetXAxis([]string{"a", "b"}).AddSeries("s", nil)
	html, err := page("lines", true, ln)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>lines</title>", "echarts.min.js", "echarts.init"} {
		if !strings.Contains(html, want) {
			t.Errorf("page lacks %q", want)
		}
	}
}
