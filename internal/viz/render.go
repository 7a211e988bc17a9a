//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package viz

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"regexp"

	"github.com/go-echarts/go-echarts/v2/components"
)

//
// OVERRIDE GO-ECHARTS [original code at https://github.com/go-echarts/go-echarts]
//

// ModRenderer etc modified from https://github.com/go-echarts/go-echarts/render/engine.go
type ModRenderer interface {
	Render(w io.Writer) error
}

type CustomPageRender struct {
	c          interface{}
	standalone bool
	before     []func()
}

// NewCustomPageRender returns a render implementation for Page; standalone adds <html>, <head> and <body>
func NewCustomPageRender(c interface{}, standalone bool, before ...func()) ModRenderer {
	return &CustomPageRender{c: c, standalone: standalone, before: before}
}

// Render renders the page into the given io.Writer.
func (r *CustomPageRender) Render(w io.Writer) error {
	const (
		TEMPLNAME = "chart"
		FULLNAME  = "page"
		PATTERN   = `(__f__")|("__f__)|(__f__)`
	)

	for _, fn := range r.before {
		fn()
	}

	contents := []string{CustomHeaderTpl, CustomBaseTpl, CustomPageTpl, CustomFullTpl}
	tpl := ModMustTemplate(TEMPLNAME, contents)

	name := TEMPLNAME
	if r.standalone {
		name = FULLNAME
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, r.c); err != nil {
		return err
	}

	pat := regexp.MustCompile(PATTERN)
	content := pat.ReplaceAll(buf.Bytes(), []byte(""))

	_, err := w.Write(content)
	return err
}

// ModMustTemplate creates a new template with the given name and parsed contents.
func ModMustTemplate(name string, contents []string) *template.Template {
	const (
		JSNAME = "safeJS"
	)

	tpl := template.Must(template.New(name).Parse(contents[0])).Funcs(template.FuncMap{
		JSNAME: func(s interface{}) template.JS {
			return template.JS(fmt.Sprint(s))
		},
	})

	for _, cont := range contents[1:] {
		tpl = template.Must(tpl.Parse(cont))
	}
	return tpl
}

// page - one chart on a page rendered by hand; the page carries the chart's assets
func page(title string, standalone bool, c components.Charter) (string, error) {
	// go-echarts is "too clever" and opaque about how to not do things its way
	p := components.NewPage()
	p.PageTitle = title
	p.Renderer = NewCustomPageRender(p, standalone, p.Validate)
	p.AddCharts(c)
	p.Validate()

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CustomHeaderTpl etc. adapted from https://github.com/go-echarts/go-echarts/templates/
var CustomHeaderTpl = `
{{ define "header" }}
<head>
    <meta charset="utf-8">
    <title>{{ .PageTitle }}</title>
{{- range .JSAssets.Values }}
    <script src="{{ . }}"></script>
{{- end }}
{{- range .CustomizedJSAssets.Values }}
    <script src="{{ . }}"></script>
{{- end }}
{{- range .CSSAssets.Values }}
    <link href="{{ . }}" rel="stylesheet">
{{- end }}
{{- range .CustomizedCSSAssets.Values }}
    <link href="{{ . }}" rel="stylesheet">
{{- end }}
</head>
{{ end }}
`

var CustomBaseTpl = `
{{- define "base" }}
<div class="container">
    <div class="item" id="{{ .ChartID }}" style="width:{{ .Initialization.Width }};height:{{ .Initialization.Height }};"></div>
</div>
<script type="text/javascript">
    "use strict";
    let goecharts_{{ .ChartID | safeJS }} = echarts.init(document.getElementById('{{ .ChartID | safeJS }}'), "{{ .Theme }}");
    let option_{{ .ChartID | safeJS }} = {{ .JSONNotEscaped | safeJS }};
    let action_{{ .ChartID | safeJS }} = {{ .JSONNotEscapedAction | safeJS }};
    goecharts_{{ .ChartID | safeJS }}.setOption(option_{{ .ChartID | safeJS }});
    goecharts_{{ .ChartID | safeJS }}.dispatchAction(action_{{ .ChartID | safeJS }});

    {{- range .JSFunctions.Fns }}
    {{ . | safeJS }}
    {{- end }}
</script>
{{ end }}
`

var CustomPageTpl = `
{{- define "chart" }}
	{{- range .Charts }} {{ template "base" . }} {{- end }}
{{ end }}
`

var CustomFullTpl = `
{{- define "page" }}
<!DOCTYPE html>
<html>
{{ template "header" . }}
<body>
{{ template "chart" . }}
</body>
</html>
{{ end }}
`
