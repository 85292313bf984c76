// Package ui provides the desktop and terminal front ends of EVPN Assistant.
// This file contains the terminal dashboard.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yllada/evpn-assistant/common"
	"github.com/yllada/evpn-assistant/vpn"
)

// stateMsg carries a published state into the dashboard.
type stateMsg vpn.ConnectionState

// actionDoneMsg ends a user action started from the dashboard.
type actionDoneMsg struct {
	state vpn.ConnectionState
}

// locationItem is one row of the location list.
type locationItem struct {
	loc   vpn.Location
	group string
}

func (i locationItem) Title() string { return i.loc.Label }

func (i locationItem) Description() string {
	if i.group == "" {
		return i.loc.Code
	}
	return i.group + " · " + i.loc.Code
}

func (i locationItem) FilterValue() string { return i.loc.Label + " " + i.loc.Code }

// Dashboard is the bubbletea model behind --tui.
type Dashboard struct {
	ctx     context.Context
	actions Actions

	list    list.Model
	spinner spinner.Model

	state  vpn.ConnectionState
	busy   string
	width  int
	height int
}

// NewDashboard creates the dashboard model. accent is an "rgb(r,g,b)"
// setting used for location labels.
func NewDashboard(ctx context.Context, actions Actions, locations *vpn.LocationMenu, accent string) Dashboard {
	if locations == nil {
		locations = vpn.DefaultLocations()
	}

	accentStyle := AccentStyle(accent)

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(accentStyle.GetForeground()).
		BorderForeground(accentStyle.GetForeground())
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(accentStyle.GetForeground())

	l := list.New(locationItems(locations), delegate, 0, 0)
	l.Title = "Locations"
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle.Background(accentStyle.GetForeground())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPending)

	return Dashboard{
		ctx:     ctx,
		actions: actions,
		list:    l,
		spinner: sp,
		state:   vpn.StateUnknown,
		busy:    "Checking status",
	}
}

func locationItems(menu *vpn.LocationMenu) []list.Item {
	var items []list.Item
	for _, g := range menu.Groups {
		switch {
		case g.IsSeparator():
		case g.IsTopLevel():
			items = append(items, locationItem{loc: g.Items[0]})
		default:
			for _, loc := range g.Items {
				items = append(items, locationItem{loc: loc, group: g.Label})
			}
		}
	}
	return items
}

// Init starts with a status check.
func (m Dashboard) Init() tea.Cmd {
	actions := m.actions
	return tea.Batch(m.spinner.Tick, m.perform(func(ctx context.Context) vpn.ConnectionState {
		return actions.Refresh(ctx)
	}))
}

// perform runs an action off the UI loop and reports its final state.
func (m Dashboard) perform(action func(ctx context.Context) vpn.ConnectionState) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{state: action(ctx)}
	}
}

// Update handles messages
func (m Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-6, 3))
		return m, nil

	case stateMsg:
		m.state = vpn.ConnectionState(msg)
		return m, nil

	case actionDoneMsg:
		m.state = msg.state
		m.busy = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Dashboard) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}

	// One action at a time; navigation stays live.
	actions := m.actions
	if m.busy == "" {
		switch msg.String() {
		case "enter":
			item, ok := m.list.SelectedItem().(locationItem)
			if !ok {
				return m, nil
			}
			code := item.loc.Code
			m.busy = "Connecting to " + item.loc.Label
			return m, m.perform(func(ctx context.Context) vpn.ConnectionState {
				return actions.PerformConnect(ctx, code)
			})
		case "d":
			m.busy = "Disconnecting"
			return m, m.perform(func(ctx context.Context) vpn.ConnectionState {
				return actions.PerformDisconnect(ctx)
			})
		case "r":
			m.busy = "Checking status"
			return m, m.perform(func(ctx context.Context) vpn.ConnectionState {
				return actions.Refresh(ctx)
			})
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Dashboard) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(common.AppName))
	b.WriteString("\n")

	status := "Status: " + RenderState(m.state)
	if m.busy != "" {
		status += "   " + m.spinner.View() + " " + m.busy + "..."
	}
	b.WriteString(statusBoxStyle.BorderForeground(StateStyle(m.state).GetForeground()).Render(status))
	b.WriteString("\n")

	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter connect • d disconnect • r refresh • / filter • q quit"))

	return b.String()
}

// State returns the last state the dashboard received.
func (m Dashboard) State() vpn.ConnectionState {
	return m.state
}

// Busy returns the label of the action in progress, if any.
func (m Dashboard) Busy() string {
	return m.busy
}

// RunDashboard runs the dashboard until the user quits. subscribe is given
// a listener that forwards published states into the running program.
func RunDashboard(ctx context.Context, actions Actions, locations *vpn.LocationMenu, accent string, subscribe func(vpn.StateListener)) error {
	p := tea.NewProgram(NewDashboard(ctx, actions, locations, accent), tea.WithAltScreen(), tea.WithContext(ctx))
	if subscribe != nil {
		subscribe(vpn.StateListenerFunc(func(s vpn.ConnectionState) {
			p.Send(stateMsg(s))
		}))
	}
	_, err := p.Run()
	return err
}
