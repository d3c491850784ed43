package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"

	"github.com/aman-zulfiqar/fpl-advisor/internal/advisor"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// maxTableRows caps how many result rows are printed; advice still sees them all.
const maxTableRows = 25

func newMarkdownRenderer() *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil
	}
	return r
}

// tableData converts a result set into pterm rows, header first.
func tableData(rs *store.ResultSet, limit int) pterm.TableData {
	data := pterm.TableData{rs.Columns}
	for i := range rs.Rows {
		if limit > 0 && i >= limit {
			break
		}
		vals := rs.Values(i)
		row := make([]string, len(vals))
		for j, v := range vals {
			row[j] = advisor.FormatValue(v)
		}
		data = append(data, row)
	}
	return data
}

func renderResults(w io.Writer, rs *store.ResultSet) {
	if rs == nil || len(rs.Columns) == 0 || rs.Empty() {
		fmt.Fprintln(w, pterm.Gray("(no matching players)"))
		return
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(tableData(rs, maxTableRows)).Srender()
	if err != nil {
		fmt.Fprint(w, advisor.FormatTable(rs))
		return
	}
	fmt.Fprintln(w, out)
	if rs.Len() > maxTableRows {
		fmt.Fprintln(w, pterm.Gray(fmt.Sprintf("... %d more rows", rs.Len()-maxTableRows)))
	}
}

func renderMarkdown(w io.Writer, r *glamour.TermRenderer, md string) {
	if r != nil {
		if out, err := r.Render(md); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprintln(w, md)
}

// renderOutcome prints either the results and advice or the error message.
func renderOutcome(w io.Writer, r *glamour.TermRenderer, out *advisor.Outcome, showSQL bool) {
	if showSQL && out.Query != "" {
		fmt.Fprintln(w, pterm.Gray(strings.TrimSpace(out.Query)))
		fmt.Fprintln(w)
	}
	if !out.Delivered() {
		fmt.Fprintln(w, pterm.Red(out.Message()))
		return
	}
	renderResults(w, out.Results)
	fmt.Fprintln(w)
	renderMarkdown(w, r, out.Advice)
}

func printWarning(msg string) {
	pterm.Warning.Println(msg)
}

// startSpinner shows a transient spinner; the returned func removes it.
func startSpinner(text string) func() {
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return func() {}
	}
	return func() { _ = spinner.Stop() }
}
