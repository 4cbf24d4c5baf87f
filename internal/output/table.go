package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// AdmissionClassRow is one admission budget for display.
type AdmissionClassRow struct {
	Name   string        `json:"name"`
	Limit  int           `json:"limit"`
	Window time.Duration `json:"window"`
}

// RenderAdmissionClasses renders admission budgets as an ASCII table.
func RenderAdmissionClasses(rows []AdmissionClassRow) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Class", "Limit", "Window", "Sustained Rate"})

	for _, row := range rows {
		rate := "-"
		if row.Window > 0 {
			rate = fmt.Sprintf("%.2f req/s", float64(row.Limit)/row.Window.Seconds())
		}
		t.AppendRow(table.Row{row.Name, row.Limit, row.Window.String(), rate})
	}

	return t.Render()
}
