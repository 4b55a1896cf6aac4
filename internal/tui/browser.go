package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/simplepg/pkg/simplepg"
)

const (
	maxColumnWidth = 40
	defaultHeight  = 15

	// Lines used by the title and help text around the table.
	chromeHeight = 5
)

// ResultBrowser is a bubbletea model for scrolling through a FetchResult.
// Enter opens the selected row as a record; esc returns to the table.
type ResultBrowser struct {
	title      string
	result     simplepg.FetchResult
	table      table.Model
	keys       KeyMap
	showRecord bool
	quitting   bool
}

// NewResultBrowser builds a browser over result.
func NewResultBrowser(title string, result simplepg.FetchResult) ResultBrowser {
	columns := make([]table.Column, len(result.Columns))
	for i, name := range result.Columns {
		columns[i] = table.Column{Title: name, Width: lipgloss.Width(name)}
	}

	rows := make([]table.Row, len(result.Rows))
	for r, values := range result.Rows {
		cells := FormatRow(values)
		for i, cell := range cells {
			if i < len(columns) {
				columns[i].Width = max(columns[i].Width, min(lipgloss.Width(cell), maxColumnWidth))
			}
		}
		rows[r] = table.Row(cells)
	}

	width := 0
	for _, c := range columns {
		width += c.Width + 2
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorSecondary).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(ColorPrimary).
		Bold(false)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(max(len(rows), 1), defaultHeight)),
		table.WithWidth(width),
		table.WithStyles(styles),
	)

	return ResultBrowser{
		title:  title,
		result: result,
		table:  t,
		keys:   DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (b ResultBrowser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b ResultBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.table.SetHeight(max(msg.Height-chromeHeight, 1))
		b.table.SetWidth(msg.Width)
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			b.quitting = true
			return b, tea.Quit
		case b.showRecord:
			if key.Matches(msg, b.keys.Back) {
				b.showRecord = false
			}
			return b, nil
		case key.Matches(msg, b.keys.Select):
			if len(b.result.Rows) > 0 {
				b.showRecord = true
			}
			return b, nil
		}
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

// View implements tea.Model.
func (b ResultBrowser) View() string {
	if b.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%d rows)", b.title, b.result.Len())))
	sb.WriteString("\n")

	if b.showRecord {
		sb.WriteString(b.recordView())
		sb.WriteString("\n")
		sb.WriteString(HelpStyle.Render(b.keys.RecordHelpText()))
		return sb.String()
	}

	sb.WriteString(b.table.View())
	sb.WriteString("\n")
	sb.WriteString(HelpStyle.Render(b.keys.HelpText()))
	return sb.String()
}

func (b ResultBrowser) recordView() string {
	row := b.result.Rows[b.table.Cursor()]

	nameWidth := 0
	for _, name := range b.result.Columns {
		nameWidth = max(nameWidth, lipgloss.Width(name))
	}

	lines := make([]string, len(b.result.Columns))
	for i, name := range b.result.Columns {
		var value any
		if i < len(row) {
			value = row[i]
		}
		label := FieldNameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name))
		lines[i] = label + "  " + FormatValue(value)
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

// Cursor returns the index of the selected row.
func (b ResultBrowser) Cursor() int {
	return b.table.Cursor()
}

// RecordVisible reports whether the single-record view is open.
func (b ResultBrowser) RecordVisible() bool {
	return b.showRecord
}

// RunResultBrowser shows result full-screen until the user quits.
func RunResultBrowser(title string, result simplepg.FetchResult) error {
	p := tea.NewProgram(NewResultBrowser(title, result), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
