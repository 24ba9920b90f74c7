package engine

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
)

// Overview writes a summary of every table to w.
func (c *Catalog) Overview(w io.Writer) {
	infos := c.Tables()

	fmt.Fprintln(w, "Database overview:")
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Table name", "# of fields", "# of entries", "Admission", "Queued"})
	for _, info := range infos {
		t.AppendRow(table.Row{info.Name, info.Fields, info.Entries, admissionLabel(info.Counter), info.Queued})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%d tables", len(infos))})
	t.Render()
}

func admissionLabel(counter int) string {
	switch {
	case counter < 0:
		return "writing"
	case counter == 0:
		return "idle"
	default:
		return fmt.Sprintf("reading(%d)", counter)
	}
}
