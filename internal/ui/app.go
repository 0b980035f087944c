package ui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/hdngo/taskdeck/internal/cache"
	"github.com/hdngo/taskdeck/internal/credstore"
	"github.com/hdngo/taskdeck/internal/models"
	"github.com/hdngo/taskdeck/internal/session"
	"github.com/hdngo/taskdeck/internal/ui/styles"
	"github.com/hdngo/taskdeck/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewAuth View = iota
	ViewTasks
	ViewProjects
)

// App routes messages between the screens and owns the session lifecycle:
// it boots the cache after login and tears everything down when the session
// ends, whether by logout or by expiry.
type App struct {
	api   *session.Client
	cache *cache.Cache
	store *credstore.Store
	log   *zap.SugaredLogger

	currentView   View
	bootstrapping bool
	auth          *views.AuthView
	tasks         *views.TaskView
	projects      *views.ProjectListView
	styles        *styles.Styles
	width         int
	height        int
}

// Creates a new application
func NewApp(api *session.Client, c *cache.Cache, store *credstore.Store, log *zap.SugaredLogger) *App {
	return &App{
		api:         api,
		cache:       c,
		store:       store,
		log:         log,
		currentView: ViewAuth,
		auth:        views.NewAuthView(api, log),
		styles:      styles.NewStyles(),
	}
}

func (a *App) Init() tea.Cmd {
	// A persisted token pair skips the login screen; the server decides
	// whether it is still good.
	if sess, err := a.store.Get(); err == nil && sess.LoggedIn() {
		a.bootstrapping = true
		return a.bootstrap
	}
	return a.auth.Init()
}

type stateLoadedMsg struct {
	state *cache.InitialState
}

// bootstrap runs the one-time full state fetch after entering a session.
// Any failure here means the token is unusable, so it forces a logout.
func (a *App) bootstrap() tea.Msg {
	st, err := a.cache.LoadInitialState(context.Background())
	if err != nil {
		a.log.Warnw("initialization failed", "error", err)
		a.api.Logout()
		return views.SessionEndedMsg{Err: err}
	}
	return stateLoadedMsg{state: st}
}

func (a *App) sizeCmd() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.auth.Update(msg)
		if a.tasks != nil {
			a.tasks.Update(msg)
		}
		if a.projects != nil {
			a.projects.Update(msg)
		}
		return a, nil

	case views.LoggedInMsg:
		a.bootstrapping = true
		return a, a.bootstrap

	case stateLoadedMsg:
		a.bootstrapping = false
		a.tasks = views.NewTaskView(a.cache, a.log)
		a.projects = views.NewProjectListView(a.cache, a.log)
		a.currentView = ViewTasks

		cmds := []tea.Cmd{a.projects.Init(), a.sizeCmd()}
		if p, ok := a.lastOpenedProject(); ok {
			cmds = append(cmds, a.tasks.OpenProject(p))
		}
		return a, tea.Batch(cmds...)

	case views.SessionEndedMsg:
		if msg.Err != nil {
			a.log.Infow("session ended", "reason", msg.Err.Error())
		}
		a.api.Logout()
		a.cache.Reset()
		a.saveLastProject("")
		a.tasks = nil
		a.projects = nil
		a.bootstrapping = false
		a.auth = views.NewAuthView(a.api, a.log)
		a.currentView = ViewAuth
		return a, tea.Batch(a.auth.Init(), a.sizeCmd())

	case views.SelectedProject:
		a.currentView = ViewTasks
		a.saveLastProject(strconv.FormatInt(msg.Project.ID, 10))
		return a, a.tasks.OpenProject(msg.Project)

	case views.ShowMyTasks:
		a.currentView = ViewTasks
		a.saveLastProject("")
		a.tasks.ShowMine()
		return a, nil

	case views.ShowProjectBrowse:
		a.currentView = ViewProjects
		return a, a.projects.Init()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewAuth:
		_, cmd = a.auth.Update(msg)
	case ViewTasks:
		if a.tasks != nil {
			_, cmd = a.tasks.Update(msg)
		}
	case ViewProjects:
		if a.projects != nil {
			_, cmd = a.projects.Update(msg)
		}
	}

	return a, cmd
}

// saveLastProject persists the selection; a write failure only costs the
// restore on next launch, so it is logged and otherwise ignored.
func (a *App) saveLastProject(id string) {
	if err := a.store.SetSetting("last_project_id", id); err != nil {
		a.log.Warnw("persist last project", "error", err)
	}
}

// lastOpenedProject restores the project selected in the previous run, if
// it still exists in the fresh project list.
func (a *App) lastOpenedProject() (models.Project, bool) {
	idStr, err := a.store.GetSetting("last_project_id")
	if err != nil || idStr == "" {
		return models.Project{}, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return models.Project{}, false
	}
	return a.cache.Project(id)
}

func (a *App) View() string {
	if a.bootstrapping {
		return a.styles.TitleMuted.Render("Loading...")
	}

	switch a.currentView {
	case ViewTasks:
		if a.tasks != nil {
			return a.tasks.View()
		}
	case ViewProjects:
		if a.projects != nil {
			return a.projects.View()
		}
	}
	return a.auth.View()
}
