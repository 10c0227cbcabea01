package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"navindex/internal/adapters/tui/views"
	"navindex/internal/application/commands"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewSearch
	ViewConfirm
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state   ViewState
	browser *views.BrowserModel
	search  *views.SearchModel
	confirm *views.ConfirmModel
	help    *views.HelpModel
}

// NewApp creates a new TUI application
func NewApp(env commands.Env) *App {
	return &App{
		state:   ViewBrowser,
		browser: views.NewBrowserModel(env),
		search:  views.NewSearchModel(env.Registry),
		confirm: views.NewConfirmModel(env),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.browser.SetSize(msg.Width, msg.Height)
		a.search.SetSize(msg.Width, msg.Height)
		a.confirm.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToSearchMsg:
		a.state = ViewSearch
		a.search.Reset(msg.Tree)
		return a, a.search.Init()

	case views.SwitchToConfirmMsg:
		a.state = ViewConfirm
		a.confirm.SetTarget(msg.Action, msg.Tree, msg.Node)
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		if msg.Reload {
			return a, a.browser.Reload()
		}
		return a, nil

	case views.SearchSelectMsg:
		a.state = ViewBrowser
		a.browser.Reveal(msg.Key)
		return a, nil

	case views.MutationDoneMsg:
		// Confirmed actions report back to the browser
		if a.state == ViewConfirm && msg.Err != nil {
			a.confirm.SetMessage(msg.Err.Error(), true)
			return a, nil
		}
		a.state = ViewBrowser
		_, cmd := a.browser.Update(msg)
		return a, cmd
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewSearch:
		_, cmd = a.search.Update(msg)
	case ViewConfirm:
		_, cmd = a.confirm.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	// Loads and rebuilds started from the browser finish in the background
	if _, isKey := msg.(tea.KeyMsg); !isKey && a.state != ViewBrowser {
		_, bcmd := a.browser.Update(msg)
		return a, tea.Batch(cmd, bcmd)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewSearch:
		return a.search.View()
	case ViewConfirm:
		return a.confirm.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
