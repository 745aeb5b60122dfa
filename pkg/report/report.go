// Package report renders the per-project summary printed at the end of
// a run.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/seqops/bamlink/pkg/types"
)

// Print writes the summary table to w, styled with pterm when stdout is
// a terminal and plain aligned text otherwise.
func Print(w io.Writer, summary types.Summary) {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		if rendered, err := renderStyled(summary); err == nil {
			fmt.Fprintln(w, "Files and samples that were linked")
			fmt.Fprint(w, rendered)
			return
		}
	}
	fmt.Fprintln(w, "Files and samples that were linked")
	fmt.Fprint(w, RenderPlain(summary))
}

// renderStyled renders the summary with pterm.
func renderStyled(summary types.Summary) (string, error) {
	data := pterm.TableData{{"Project", "Samples", "Files"}}
	for _, project := range summary.Projects() {
		stats := summary[project]
		data = append(data, []string{
			project,
			strconv.Itoa(stats.Samples),
			strconv.Itoa(stats.Files),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// RenderPlain renders the summary as tab-aligned text, one project per
// line in sorted order.
func RenderPlain(summary types.Summary) string {
	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Project\tSamples\tFiles")
	for _, project := range summary.Projects() {
		stats := summary[project]
		fmt.Fprintf(tw, "%s\t%d\t%d\n", project, stats.Samples, stats.Files)
	}
	tw.Flush()
	return buf.String()
}
