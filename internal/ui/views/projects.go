package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hdngo/taskdeck/internal/cache"
	"github.com/hdngo/taskdeck/internal/filter"
	"github.com/hdngo/taskdeck/internal/models"
	"github.com/hdngo/taskdeck/internal/session"
	"github.com/hdngo/taskdeck/internal/ui/keys"
	"github.com/hdngo/taskdeck/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, metaStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		metaStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		metaStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(filter.TruncateName(p.project.Name, filter.SidebarNameMax))
	meta := metaStyle.Render(fmt.Sprintf("%s's team • %d members",
		p.project.Owner.DisplayName(), len(p.project.Members)))

	fmt.Fprintf(w, "%s\n%s", title, meta)
}

// ProjectListView is the project browser: select, create, manage members.
type ProjectListView struct {
	cache    *cache.Cache
	log      *zap.SugaredLogger
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	creating bool
	newName  textinput.Model
	newDesc  textinput.Model
	focusIdx int // 0=name, 1=desc, 2=confirm
	busy     bool
	errMsg   string

	members *MembersPanel
}

// NewProjectListView creates the project browser over the cached projects.
func NewProjectListView(c *cache.Cache, log *zap.SugaredLogger) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 255

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 255

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		cache:    c,
		log:      log,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.reload
}

type projectsReloadedMsg struct {
	projects []models.Project
}

// reload re-reads the cached project list. The cache is the source of
// truth; membership mutations refresh it from the server first.
func (v *ProjectListView) reload() tea.Msg {
	return projectsReloadedMsg{projects: v.cache.Projects()}
}

type projectCreatedMsg struct {
	project models.Project
}

type projectCreateFailedMsg struct {
	err error
}

func (v *ProjectListView) createProject(name, description string) tea.Cmd {
	return func() tea.Msg {
		project, err := v.cache.CreateProject(context.Background(), name, description)
		if err != nil {
			return projectCreateFailedMsg{err: err}
		}
		return projectCreatedMsg{project: project}
	}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsReloadedMsg:
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		if v.members != nil {
			// Keep the open member panel on the refreshed snapshot.
			for _, p := range msg.projects {
				if p.ID == v.members.project.ID {
					v.members.SetProject(p)
				}
			}
		}
		return v, nil

	case projectCreatedMsg:
		v.busy = false
		v.creating = false
		// Jump straight into the new project.
		return v, func() tea.Msg { return SelectedProject{Project: msg.project} }

	case projectCreateFailedMsg:
		v.busy = false
		if session.IsAuthError(msg.err) {
			return v, endSession(msg.err)
		}
		v.errMsg = msg.err.Error()
		return v, nil
	}

	if v.members != nil {
		done, cmd := v.members.Update(msg)
		if done {
			v.members = nil
			return v, v.reload
		}
		return v, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if v.creating {
			return v.updateCreating(keyMsg)
		}
		return v.updateNormal(keyMsg)
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Logout):
		return v, endSession(nil)

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return ShowMyTasks{} }

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.focusIdx = 0
		v.errMsg = ""
		v.newName.Reset()
		v.newDesc.Reset()
		v.newName.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Members):
		if item, ok := v.list.SelectedItem().(projectItem); ok {
			v.members = NewMembersPanel(v.cache, v.log, item.project, v.width, v.height)
			return v, v.members.Init()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if item, ok := v.list.SelectedItem().(projectItem); ok {
			return v, func() tea.Msg {
				return SelectedProject{Project: item.project}
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v.submitCreate()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v.submitCreate()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) submitCreate() (tea.Model, tea.Cmd) {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" || v.busy {
		return v, nil
	}
	v.busy = true
	v.errMsg = ""
	return v, v.createProject(name, strings.TrimSpace(v.newDesc.Value()))
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.members != nil {
		return v.members.View()
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		btnStyle.Render(" Create "),
	}
	if v.busy {
		rows = append(rows, "", s.TitleMuted.Render("Creating..."))
	} else if v.errMsg != "" {
		rows = append(rows, "", s.ErrorText.Render(v.errMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s members • %s my tasks • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("m"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
