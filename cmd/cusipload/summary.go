package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"

	"github.com/JonMunkholm/cusip/internal/core"
)

var statusIcons = map[core.Status]string{
	core.StatusSuccess: "+",
	core.StatusError:   "x",
	core.StatusSkipped: "-",
}

// writeSummary renders one row per result plus a totals footer.
func writeSummary(w io.Writer, results []core.LoadResult) {
	fmt.Fprintln(w, "\nSUMMARY")

	t := table.NewWriter()
	t.SetOutputMirror(w)

	// Don't uppercase the header and footer values.
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	t.AppendHeader(table.Row{"", "type", "file", "read", "upserted", "status", "error"})

	var read int
	var upserted int64
	for _, r := range results {
		read += r.RowsRead
		upserted += r.RowsUpserted
		t.AppendRow(table.Row{
			statusIcons[r.Status], r.Type, r.File, r.RowsRead, r.RowsUpserted, r.Status, r.Error,
		})
	}
	t.AppendFooter(table.Row{"", "total", "", read, upserted, "", ""})

	t.Render()
}
