package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xranby/apitrace/trace"
)

// maxLoadedCalls bounds how much of a capture the browser materializes.
const maxLoadedCalls = 100000

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	callStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	incompleteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateLoading browserState = iota
	stateBrowse
	stateDetail
)

type browserModel struct {
	err      error
	filename string
	calls    []*trace.Call
	filtered []int // indices into calls
	filter   textinput.Model
	selected int
	top      int
	height   int
	state    browserState
}

type tracedMsg struct {
	err   error
	calls []*trace.Call
}

func newBrowserModel(filename string) *browserModel {
	filter := textinput.New()
	filter.Placeholder = "filter by function name"
	filter.CharLimit = 64
	return &browserModel{
		filename: filename,
		filter:   filter,
		height:   24,
		state:    stateLoading,
	}
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newBrowserModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadTrace
}

func (m *browserModel) loadTrace() tea.Msg {
	p := trace.NewParser()
	if err := p.Open(m.filename); err != nil {
		return tracedMsg{err: err}
	}
	defer p.Close()

	var calls []*trace.Call
	for len(calls) < maxLoadedCalls {
		call, err := p.ParseCall(trace.FullParse)
		if err != nil {
			return tracedMsg{err: err}
		}
		if call == nil {
			break
		}
		calls = append(calls, call)
	}
	return tracedMsg{calls: calls}
}

func (m *browserModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.filtered = m.filtered[:0]
	for i, call := range m.calls {
		if needle == "" || strings.Contains(strings.ToLower(call.Name()), needle) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.top = 0
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tracedMsg:
		m.err = msg.err
		m.calls = msg.calls
		m.state = stateBrowse
		m.applyFilter()
		return m, nil

	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.filter.Focused() {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *browserModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filter.Focused() {
		switch msg.String() {
		case "enter", "esc":
			m.filter.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.state == stateDetail {
			m.state = stateBrowse
		}
		return m, nil
	case "/":
		if m.state == stateBrowse {
			m.filter.Focus()
		}
		return m, nil
	case "enter":
		if m.state == stateBrowse && len(m.filtered) > 0 {
			m.state = stateDetail
		}
		return m, nil
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.listHeight())
	case "pgdown":
		m.move(m.listHeight())
	case "home":
		m.selected = 0
		m.top = 0
	case "end":
		m.move(len(m.filtered))
	}
	return m, nil
}

func (m *browserModel) listHeight() int {
	h := m.height - 5
	if h < 1 {
		h = 1
	}
	return h
}

func (m *browserModel) move(delta int) {
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+m.listHeight() {
		m.top = m.selected - m.listHeight() + 1
	}
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tracedump — " + m.filename))
	b.WriteString("\n")

	switch m.state {
	case stateLoading:
		b.WriteString("\nLoading trace...\n")

	case stateBrowse:
		if m.err != nil {
			b.WriteString("\n" + incompleteStyle.Render(m.err.Error()) + "\n")
			b.WriteString(helpStyle.Render("q: quit"))
			break
		}
		b.WriteString(m.filter.View())
		b.WriteString("\n")
		m.viewList(&b)
		b.WriteString(helpStyle.Render("↑/↓: move  enter: detail  /: filter  q: quit"))

	case stateDetail:
		m.viewDetail(&b)
		b.WriteString(helpStyle.Render("esc: back  q: quit"))
	}

	return b.String()
}

func (m *browserModel) viewList(b *strings.Builder) {
	if len(m.filtered) == 0 {
		b.WriteString("\n  no calls match\n\n")
		return
	}

	end := m.top + m.listHeight()
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for _, idx := range m.filtered[m.top:end] {
		call := m.calls[idx]
		line := fmt.Sprintf("%s %s", numberStyle.Render(fmt.Sprintf("%6d", call.No)), callStyle.Render(call.Name()))
		if call.Flags.Has(trace.CallFlagIncomplete) {
			line += " " + incompleteStyle.Render("(incomplete)")
		}
		if idx == m.filtered[m.selected] {
			line = selectedStyle.Render(fmt.Sprintf("%6d %s", call.No, call.Name()))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "\n%d/%d calls\n", len(m.filtered), len(m.calls))
}

func (m *browserModel) viewDetail(b *strings.Builder) {
	call := m.calls[m.filtered[m.selected]]

	b.WriteString("\n")
	var dumped strings.Builder
	trace.DumpCall(call, &dumped, trace.DumpFlagNoColor|trace.DumpFlagThreadIDs)
	b.WriteString(dumped.String())
	b.WriteString("\n")

	fmt.Fprintf(b, "function: %s\n", call.Name())
	fmt.Fprintf(b, "call no:  %d\n", call.No)
	fmt.Fprintf(b, "thread:   %d\n", call.ThreadID)
	for i := range call.Args {
		name := fmt.Sprintf("arg%d", i)
		if i < len(call.Sig.ArgNames) {
			name = call.Sig.ArgNames[i]
		}
		var v strings.Builder
		trace.DumpValue(call.Arg(i), &v, trace.DumpFlagNoColor)
		fmt.Fprintf(b, "  %s = %s\n", name, v.String())
	}
	if call.Ret != nil {
		var v strings.Builder
		trace.DumpValue(call.Ret, &v, trace.DumpFlagNoColor)
		fmt.Fprintf(b, "  ret = %s\n", v.String())
	}
	b.WriteString("\n")
}
