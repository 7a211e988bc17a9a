//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package rpt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

var ErrUnknownFormat = errors.New("unknown export format")

const (
	FmtCSV      = "csv"
	FmtMarkdown = "markdown"
	FmtLaTeX    = "latex"
	FmtTerminal = "terminal"
)

var (
	titlestyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	plainstyle = lipgloss.NewStyle().Bold(true)
)

// Export - write the table in one of the known formats; bw drops terminal colour
func Export(w io.Writer, t Table, format string, bw bool) error {
	switch format {
	case FmtCSV:
		return exportCSV(w, t)
	case FmtMarkdown:
		return exportMarkdown(w, t)
	case FmtLaTeX:
		return exportLaTeX(w, t)
	case FmtTerminal:
		return exportTerminal(w, t, bw)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func exportCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func exportMarkdown(w io.Writer, t Table) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tw.SetCenterSeparator("|")
	tw.AppendBulk(t.Rows)
	tw.Render()
	return nil
}

func exportTerminal(w io.Writer, t Table, bw bool) error {
	st := titlestyle
	if bw {
		st = plainstyle
	}
	if t.Title != "" {
		if _, err := fmt.Fprintln(w, st.Render(t.Title)); err != nil {
			return err
		}
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(t.Header)
	tw.SetAutoFormatHeaders(false)
	tw.SetRowLine(false)
	tw.AppendBulk(t.Rows)
	tw.Render()
	return nil
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
)

func exportLaTeX(w io.Writer, t Table) error {
	const (
		BEGIN = "\\begin{tabular}{%s}\n\\toprule\n"
		MID   = "\\midrule\n"
		END   = "\\bottomrule\n\\end{tabular}\n"
	)
	esc := func(cells []string) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = latexEscaper.Replace(c)
		}
		return strings.Join(out, " & ") + " \\\\\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(BEGIN, strings.Repeat("l", len(t.Header))))
	sb.WriteString(esc(t.Header))
	sb.WriteString(MID)
	for _, r := range t.Rows {
		sb.WriteString(esc(r))
	}
	sb.WriteString(END)
	_, err := io.WriteString(w, sb.String())
	return err
}
