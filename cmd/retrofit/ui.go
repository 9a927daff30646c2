// # cmd/retrofit/ui.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"retrofit/internal/refactor"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	droppedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	dropped     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	rows       []refactor.PlanRow
	dropped    []refactor.Unimplemented
	lastUpdate time.Time
}

type planMsg struct {
	rows    []refactor.PlanRow
	dropped []refactor.Unimplemented
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case planMsg:
		m.rows = msg.rows
		m.dropped = msg.dropped
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, row := range m.rows {
			items = append(items, item{
				title: string(row.Requirement.Kind()),
				desc:  fmt.Sprintf("%s%s", strings.Repeat("  ", row.Depth), row.Requirement.Describe()),
			})
		}
		for _, d := range m.dropped {
			items = append(items, item{
				title:   "dropped",
				desc:    fmt.Sprintf("%s: %s", d.Requirement.Describe(), d.Message),
				dropped: true,
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last plan: %v | %d requirements",
		m.lastUpdate.Format("15:04:05"), len(m.rows)))

	var summary string
	if len(m.dropped) == 0 {
		summary = successStyle.Render("✅ Plan complete")
	} else {
		summary = droppedStyle.Render(fmt.Sprintf("⚠️  %d dropped", len(m.dropped)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Refactoring Plan"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Planned Requirements"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
