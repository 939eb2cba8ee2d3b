package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/artugro/load-flow/pkg/loadflow"
)

// PrintSummary writes the rendered summary to w.
func PrintSummary(w io.Writer, summary *loadflow.RunSummary, styled bool) error {
	_, err := io.WriteString(w, RenderSummary(summary, styled)+"\n")
	return err
}

// RenderSummary renders catalog results, ingestion counters and final table
// counts. Unstyled output is plain aligned text without colors or borders.
func RenderSummary(summary *loadflow.RunSummary, styled bool) string {
	title := fmt.Sprintf("Run %s finished in %s", summary.RunID, summary.Duration.Round(time.Millisecond))

	sections := []string{
		title,
		renderTable(styled, []string{"Dimension", "Observed", "Existing", "Inserted", "Status"}, catalogRows(summary.Catalog)),
		renderTable(styled, []string{"Employees", "Rows"}, employeeRows(summary.Employees)),
		renderTable(styled, []string{"Table", "Rows"}, countRows(summary.Counts)),
	}
	if styled {
		sections[0] = TitleStyle.Render(title)
	}
	return strings.Join(sections, "\n\n")
}

func catalogRows(results []loadflow.CatalogLoadResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := SymbolCheck + " ok"
		if r.Conflict != nil {
			status = SymbolWarning + " conflict, rolled back"
		}
		rows = append(rows, []string{
			r.Dimension.String(),
			strconv.Itoa(r.Observed),
			strconv.Itoa(r.Existing),
			strconv.Itoa(r.Inserted),
			status,
		})
	}
	return rows
}

func employeeRows(s loadflow.IngestStats) [][]string {
	return [][]string{
		{"read", strconv.Itoa(s.Read)},
		{"skipped (unresolved reference)", strconv.Itoa(s.SkippedUnresolved)},
		{"skipped (invalid row)", strconv.Itoa(s.SkippedInvalid)},
		{"skipped (already loaded)", strconv.Itoa(s.SkippedExisting)},
		{"inserted", strconv.Itoa(s.Inserted)},
		{"batches committed", strconv.Itoa(s.BatchesCommitted)},
		{"batches discarded", strconv.Itoa(s.BatchesDiscarded)},
		{"rows discarded", strconv.Itoa(s.RowsDiscarded)},
	}
}

func countRows(c loadflow.TableCounts) [][]string {
	rows := make([][]string, 0, len(loadflow.Dimensions)+1)
	for _, dim := range loadflow.Dimensions {
		rows = append(rows, []string{dim.Table(), strconv.FormatInt(c.Dimensions[dim], 10)})
	}
	return append(rows, []string{"employee", strconv.FormatInt(c.Employees, 10)})
}

func renderTable(styled bool, headers []string, rows [][]string) string {
	if !styled {
		return renderPlain(headers, rows)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderStyle
			case row < 0 || row >= len(rows):
				return CellStyle
			case col == len(headers)-1 && strings.HasPrefix(rows[row][col], SymbolWarning):
				return CellStyle.Inherit(WarningStyle)
			case col == len(headers)-1 && strings.HasPrefix(rows[row][col], SymbolCheck):
				return CellStyle.Inherit(SuccessStyle)
			case col > 0 && isNumber(rows[row][col]):
				return NumberStyle
			default:
				return CellStyle
			}
		}).
		String()
}

// renderPlain pads every column to its widest cell.
func renderPlain(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
			}
		}
		b.WriteString("\n")
	}

	writeLine(headers)
	for _, r := range rows {
		writeLine(r)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func isNumber(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
