package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"arbor/internal/events"
	"arbor/internal/reconciler"
)

// RenderSummary writes the pending change summary as a styled table. All
// three categories render even when empty, so the shape of the output is
// stable for callers that parse it.
func RenderSummary(w io.Writer, summary map[string][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("CATEGORY"),
		text.FgHiCyan.Sprint("COUNT"),
		text.FgHiCyan.Sprint("PATHS"),
	})

	rows := []struct {
		category string
		color    text.Color
	}{
		{reconciler.CategoryAdded, text.FgGreen},
		{reconciler.CategoryChanged, text.FgYellow},
		{reconciler.CategoryRemoved, text.FgRed},
	}
	for _, r := range rows {
		paths := summary[r.category]
		joined := "-"
		if len(paths) > 0 {
			joined = strings.Join(paths, ", ")
		}
		t.AppendRow(table.Row{r.color.Sprint(r.category), len(paths), joined})
	}

	t.Render()
}

// RenderPassResult writes a one-line outcome for a reconciliation pass.
func RenderPassResult(w io.Writer, res reconciler.PassResult) {
	switch {
	case res.Skipped:
		fmt.Fprintln(w, FormatSuccess("Nothing to do, no document changed since the last flush"))
	case res.Total() == 0:
		fmt.Fprintln(w, FormatSuccess(fmt.Sprintf(
			"Pass %s found nothing to reconcile (%d paths examined)",
			shortID(res.ID), res.Processed)))
	default:
		fmt.Fprintln(w, FormatSuccess(fmt.Sprintf(
			"Pass %s applied %d changes in %s (%s, %s, %s)",
			shortID(res.ID), res.Total(), res.Duration.Round(time.Millisecond),
			text.FgGreen.Sprintf("%d added", res.Added),
			text.FgYellow.Sprintf("%d updated", res.Updated),
			text.FgRed.Sprintf("%d removed", res.Removed))))
	}
}

// RenderEvent writes one dispatched change line. Apply and watch plug this
// into the engine observer when verbose output is requested.
func RenderEvent(w io.Writer, kind events.Kind, path string) {
	var marker string
	switch kind {
	case events.KindAdd:
		marker = text.FgGreen.Sprint("+")
	case events.KindRemove:
		marker = text.FgRed.Sprint("-")
	default:
		marker = text.FgYellow.Sprint("~")
	}
	fmt.Fprintf(w, "  %s %s\n", marker, path)
}

// shortID trims a pass UUID down to its first block for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
