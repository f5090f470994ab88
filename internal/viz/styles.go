package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 1)
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// Row is one label/value line of a panel.
type Row struct {
	Label string
	Value string
}

// Rowf formats a value with fmt.Sprintf.
func Rowf(label, format string, args ...any) Row {
	return Row{Label: label, Value: fmt.Sprintf(format, args...)}
}

// MapRows turns a name->value map into rows sorted by name.
func MapRows(m map[string]float64) []Row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, Rowf(k, "%.6g", m[k]))
	}
	return rows
}

func renderRows(rows []Row) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(labelStyle.Render(r.Label))
		b.WriteString(valueStyle.Render(r.Value))
	}
	return b.String()
}

// Panel renders a titled, bordered block of rows.
func Panel(title string, rows []Row) string {
	return panelStyle.Render(headerStyle.Render(title) + "\n" + renderRows(rows))
}
