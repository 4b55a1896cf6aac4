package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/vvka-141/simplepg/internal/tui"
	"github.com/vvka-141/simplepg/pkg/simplepg"
)

// renderTable formats result like psql's aligned output, followed by a row count.
func renderTable(result simplepg.FetchResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.BorderStyle).
		Headers(result.Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tui.HeaderStyle
			case row >= 0 && row < len(result.Rows) && col < len(result.Rows[row]) && result.Rows[row][col] == nil:
				return tui.NullStyle
			default:
				return tui.CellStyle
			}
		})

	for _, row := range result.Rows {
		t.Row(tui.FormatRow(row)...)
	}

	return t.String() + "\n" + rowCount(result.Len())
}

func rowCount(n int) string {
	if n == 1 {
		return "(1 row)"
	}
	return fmt.Sprintf("(%d rows)", n)
}

// writeJSON writes the result as an array of records. Keys of each object
// follow encoding/json's sorted map order.
func writeJSON(w io.Writer, result simplepg.FetchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.AsRecords()); err != nil {
		return fmt.Errorf("encode result as JSON: %w", err)
	}
	return nil
}
