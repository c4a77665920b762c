package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/objhost"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	host     *objhost.Host
	bridge   *bridge.Bridge
	root     *bridge.Proxy
	result   string
	members  []memberInfo
	input    textinput.Model
	selected int
	state    modelState
	pending  bool
	quitting bool
}

type memberInfo struct {
	name string
	kind string
	mode memberMode
}

type memberMode int

const (
	modeGet memberMode = iota
	modeCall
	modeNew
)

func (m memberMode) verb() string {
	switch m {
	case modeCall:
		return "call"
	case modeNew:
		return "new"
	}
	return "get"
}

type modelState int

const (
	stateSelectMember modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(host *objhost.Host) *interactiveModel {
	return &interactiveModel{
		host:  host,
		state: stateSelectMember,
	}
}

type loadedMsg struct {
	err     error
	bridge  *bridge.Bridge
	root    *bridge.Proxy
	members []memberInfo
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadRoot
}

func (m *interactiveModel) loadRoot() tea.Msg {
	ctx := context.Background()

	b := bridge.New(m.host)
	root, err := b.Root(ctx)
	if err != nil {
		b.Close(ctx)
		return loadedMsg{err: err}
	}
	if root == nil {
		b.Close(ctx)
		return loadedMsg{err: fmt.Errorf("host has no root object")}
	}

	global := m.host.Global()
	var members []memberInfo
	for _, name := range global.Names() {
		v, _ := global.Lookup(name)
		mi := memberInfo{name: name, kind: memberKind(v)}
		switch v.(type) {
		case *objhost.Class:
			mi.mode = modeNew
		default:
			if isFunc(v) {
				mi.mode = modeCall
			}
		}
		members = append(members, mi)
	}

	return loadedMsg{bridge: b, root: root, members: members}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateInputArgs && msg.String() == "q" {
				break
			}
			if m.pending {
				// Close once the running call reports back.
				m.quitting = true
				return m, nil
			}
			return m, m.quit()

		case "up", "k":
			if m.state == stateSelectMember && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectMember && m.selected < len(m.members)-1 {
				m.selected++
			}

		case "enter":
			if m.pending {
				break
			}
			switch m.state {
			case stateSelectMember:
				if len(m.members) == 0 {
					break
				}
				if m.members[m.selected].mode == modeGet {
					return m, m.startInvoke(m.members[m.selected], nil)
				}
				m.prepareInput()
				m.state = stateInputArgs
				return m, nil

			case stateInputArgs:
				return m, m.startInvoke(m.members[m.selected], parseArgs(m.input.Value()))

			case stateShowResult:
				m.state = stateSelectMember
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectMember
			case stateShowResult:
				m.state = stateSelectMember
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.bridge = msg.bridge
		m.root = msg.root
		m.members = msg.members

	case callResultMsg:
		m.pending = false
		if m.quitting {
			return m, m.quit()
		}
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "1, 2.5, \"text\", true, nil"
	ti.Prompt = "args: "
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.bridge != nil {
		m.bridge.Close(context.Background())
	}
	return tea.Quit
}

// startInvoke returns a command running one bridge call. Everything the
// command needs is captured here so it never reads the model while
// Update runs; pending keeps Update from starting a second call or closing
// the bridge under it.
func (m *interactiveModel) startInvoke(mi memberInfo, args []any) tea.Cmd {
	root, host := m.root, m.host
	if root == nil {
		return func() tea.Msg {
			return callResultMsg{err: fmt.Errorf("root object not loaded")}
		}
	}
	m.pending = true
	return func() tea.Msg {
		return invoke(root, host, mi, args)
	}
}

func invoke(root *bridge.Proxy, host *objhost.Host, mi memberInfo, args []any) callResultMsg {
	ctx := context.Background()
	var (
		result any
		err    error
	)
	switch mi.mode {
	case modeCall:
		result, err = root.Call(ctx, mi.name, args...)
	case modeNew:
		result, err = root.CallConstructor(ctx, mi.name, args...)
	default:
		result, err = root.Get(ctx, mi.name)
	}
	if err != nil {
		return callResultMsg{err: err}
	}

	text := formatValue(result)
	if p, ok := result.(*bridge.Proxy); ok {
		if v, live := host.Table().Get(p.Handle()); live {
			text += " " + typeStyle.Render(fmt.Sprintf("%T", v))
		}
	}
	return callResultMsg{result: text}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.root == nil {
		return "Loading root object..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Bridge Browser"))
	b.WriteString(" ")
	b.WriteString(m.root.String())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectMember:
		b.WriteString("Select a root member:\n\n")
		for i, mi := range m.members {
			line := m.formatMember(mi)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter get/call/new • q quit"))

	case stateInputArgs:
		mi := m.members[m.selected]
		b.WriteString(fmt.Sprintf("%s %s\n\n", mi.mode.verb(), funcStyle.Render(mi.name)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateShowResult:
		mi := m.members[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s %s:\n\n", mi.mode.verb(), funcStyle.Render(mi.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		stats := m.bridge.Stats()
		b.WriteString(helpStyle.Render(fmt.Sprintf("handles: %d acquired, %d released, %d pending",
			stats.Acquired, stats.Released, stats.Pending)))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatMember(mi memberInfo) string {
	return fmt.Sprintf("%s %s %s", helpStyle.Render(mi.mode.verb()), funcStyle.Render(mi.name), typeStyle.Render(mi.kind))
}

func runInteractive(host *objhost.Host) error {
	p := tea.NewProgram(newInteractiveModel(host), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
