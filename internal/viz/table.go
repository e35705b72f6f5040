package viz

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff")).Padding(0, 1)
	bodyCell   = lipgloss.NewStyle().Padding(0, 1)
)

// Table is a titled grid of preformatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func (t Table) String() string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})

	if t.Title == "" {
		return tbl.Render() + "\n"
	}
	return Title.Render(t.Title) + "\n" + tbl.Render() + "\n"
}

func (t Table) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprint(w, t.String())
	return int64(n), err
}
