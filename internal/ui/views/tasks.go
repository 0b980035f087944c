package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
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

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// endSession converts a session-fatal error into the central reset message.
func endSession(err error) tea.Cmd {
	return func() tea.Msg { return SessionEndedMsg{Err: err} }
}

// TaskScope selects which task collection the view renders.
type TaskScope int

const (
	ScopeMine TaskScope = iota
	ScopeProject
)

// TaskView shows either the personal task list (upcoming/overdue/completed
// tabs) or one project's tasks (status tabs), plus the task detail panel.
type TaskView struct {
	cache  *cache.Cache
	log    *zap.SugaredLogger
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	scope   TaskScope
	project models.Project
	tasks   []models.Task
	tab     filter.TaskFilter
	status  models.Status // "" = all, project scope only
	loading bool
	loadErr string
	cursor  int

	// Detail panel (always fetched fresh)
	viewing       bool
	detailLoading bool
	detail        models.Task
	comments      []models.Comment
	commentInput  textarea.Model
	commentFocus  bool
	posting       bool

	// Task creation (project scope)
	creating       bool
	newTitle       textinput.Model
	newDesc        textarea.Model
	newPriority    textinput.Model
	newDue         textinput.Model
	createFocusIdx int // 0=title, 1=desc, 2=priority, 3=due, 4=save
	createErr      string

	toast string
}

// NewTaskView creates the task view in personal scope.
func NewTaskView(c *cache.Cache, log *zap.SugaredLogger) *TaskView {
	s := styles.NewStyles()

	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	newTitle := textinput.New()
	newTitle.Placeholder = "Task title"
	newTitle.CharLimit = 255

	newDesc := textarea.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 1000
	newDesc.SetWidth(50)
	newDesc.SetHeight(3)
	newDesc.ShowLineNumbers = false

	newPriority := textinput.New()
	newPriority.Placeholder = "LOW / MED / HIGH"
	newPriority.CharLimit = 4

	newDue := textinput.New()
	newDue.Placeholder = "YYYY-MM-DD (optional)"
	newDue.CharLimit = 10

	v := &TaskView{
		cache:        c,
		log:          log,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		tab:          filter.Upcoming,
		commentInput: commentInput,
		newTitle:     newTitle,
		newDesc:      newDesc,
		newPriority:  newPriority,
		newDue:       newDue,
	}
	v.ShowMine()
	return v
}

func (v *TaskView) Init() tea.Cmd {
	return nil
}

// ShowMine switches to the personal task list served from the cache.
func (v *TaskView) ShowMine() {
	v.scope = ScopeMine
	v.project = models.Project{}
	v.tasks = v.cache.MyTasks()
	v.loading = false
	v.loadErr = ""
	v.cursor = 0
	v.viewing = false
	v.creating = false
}

// OpenProject switches to a project's task list and starts the fetch. The
// returned command carries the project id as a staleness token; a result
// for a project that is no longer selected is discarded.
func (v *TaskView) OpenProject(p models.Project) tea.Cmd {
	v.scope = ScopeProject
	v.project = p
	v.tasks = nil
	v.status = ""
	v.loading = true
	v.loadErr = ""
	v.cursor = 0
	v.viewing = false
	v.creating = false
	return v.loadProjectTasks(p.ID)
}

type projectTasksLoadedMsg struct {
	projectID int64
	tasks     []models.Task
}

type projectTasksFailedMsg struct {
	projectID int64
	err       error
}

func (v *TaskView) loadProjectTasks(projectID int64) tea.Cmd {
	return func() tea.Msg {
		tasks, err := v.cache.TasksForProject(context.Background(), projectID)
		if err != nil {
			return projectTasksFailedMsg{projectID: projectID, err: err}
		}
		return projectTasksLoadedMsg{projectID: projectID, tasks: tasks}
	}
}

type taskDetailLoadedMsg struct {
	projectID int64
	taskID    int64
	task      models.Task
	comments  []models.Comment
}

type taskDetailFailedMsg struct {
	projectID int64
	err       error
}

func (v *TaskView) loadDetail(projectID, taskID int64) tea.Cmd {
	return func() tea.Msg {
		task, err := v.cache.TaskDetails(context.Background(), projectID, taskID)
		if err != nil {
			return taskDetailFailedMsg{projectID: projectID, err: err}
		}
		comments, err := v.cache.Comments(context.Background(), projectID, taskID)
		if err != nil {
			return taskDetailFailedMsg{projectID: projectID, err: err}
		}
		return taskDetailLoadedMsg{projectID: projectID, taskID: taskID, task: task, comments: comments}
	}
}

type commentsReloadedMsg struct {
	projectID int64
	taskID    int64
	comments  []models.Comment
}

type commentFailedMsg struct {
	err error
}

// postComment posts, then re-fetches the full comment list so the
// server-assigned id and timestamp are authoritative.
func (v *TaskView) postComment(projectID, taskID int64, body string) tea.Cmd {
	return func() tea.Msg {
		if _, err := v.cache.PostComment(context.Background(), projectID, taskID, body); err != nil {
			return commentFailedMsg{err: err}
		}
		comments, err := v.cache.Comments(context.Background(), projectID, taskID)
		if err != nil {
			return commentFailedMsg{err: err}
		}
		return commentsReloadedMsg{projectID: projectID, taskID: taskID, comments: comments}
	}
}

type statusUpdatedMsg struct {
	projectID int64
}

type statusUpdateFailedMsg struct {
	err error
}

func (v *TaskView) toggleDone(task models.Task) tea.Cmd {
	next := models.StatusDone
	if task.Status == models.StatusDone {
		next = models.StatusTodo
	}
	projectID := task.ProjectID
	return func() tea.Msg {
		if err := v.cache.UpdateTaskStatus(context.Background(), projectID, task.ID, next); err != nil {
			return statusUpdateFailedMsg{err: err}
		}
		return statusUpdatedMsg{projectID: projectID}
	}
}

type taskCreatedMsg struct {
	projectID int64
}

type taskCreateFailedMsg struct {
	err error
}

func (v *TaskView) createTask(projectID int64, fields cache.TaskFields) tea.Cmd {
	return func() tea.Msg {
		if _, err := v.cache.CreateTask(context.Background(), projectID, fields); err != nil {
			return taskCreateFailedMsg{err: err}
		}
		return taskCreatedMsg{projectID: projectID}
	}
}

// visibleTasks applies the active filter to the current scope's tasks.
func (v *TaskView) visibleTasks() []models.Task {
	if v.scope == ScopeMine {
		return filter.Tasks(v.tasks, v.tab, time.Now())
	}
	return filter.ByStatus(v.tasks, v.status)
}

func (v *TaskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		inputWidth := clamp(contentWidth-10, 20, 50)
		v.commentInput.SetWidth(inputWidth)
		v.newDesc.SetWidth(inputWidth)
		return v, nil

	case projectTasksLoadedMsg:
		if v.scope != ScopeProject || msg.projectID != v.project.ID {
			// Superseded by a navigation; drop the stale result.
			return v, nil
		}
		v.loading = false
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case projectTasksFailedMsg:
		if session.IsAuthError(msg.err) {
			return v, endSession(msg.err)
		}
		if v.scope != ScopeProject || msg.projectID != v.project.ID {
			return v, nil
		}
		v.loading = false
		v.loadErr = "Failed to load tasks."
		v.log.Warnw("load project tasks", "project_id", msg.projectID, "error", msg.err)
		return v, nil

	case taskDetailLoadedMsg:
		if v.scope == ScopeProject && msg.projectID != v.project.ID {
			return v, nil
		}
		v.detailLoading = false
		v.viewing = true
		v.detail = msg.task
		v.comments = msg.comments
		return v, nil

	case taskDetailFailedMsg:
		if session.IsAuthError(msg.err) {
			return v, endSession(msg.err)
		}
		v.detailLoading = false
		v.toast = "Could not load task details."
		return v, nil

	case commentsReloadedMsg:
		if !v.viewing || msg.taskID != v.detail.ID {
			return v, nil
		}
		v.posting = false
		v.comments = msg.comments
		v.commentInput.Reset()
		return v, nil

	case commentFailedMsg:
		if session.IsAuthError(msg.err) {
			return v, endSession(msg.err)
		}
		v.posting = false
		v.toast = "Could not post comment."
		return v, nil

	case statusUpdatedMsg:
		if v.scope == ScopeMine {
			v.tasks = v.cache.MyTasks()
			return v, nil
		}
		if msg.projectID == v.project.ID {
			v.loading = true
			return v, v.loadProjectTasks(v.project.ID)
		}
		return v, nil

	case statusUpdateFailedMsg:
		if session.IsAuthError(msg.err) {
			return v, endSession(msg.err)
		}
		v.toast = "Could not update task."
		return v, nil

	case taskCreatedMsg:
		v.creating = false
		if v.scope == ScopeProject && msg.projectID == v.project.ID {
			v.loading = true
			return v, v.loadProjectTasks(v.project.ID)
		}
		return v, nil

	case taskCreateFailedMsg:
		if session.IsAuthError(msg.err) {
			return v, endSession(msg.err)
		}
		v.createErr = msg.err.Error()
		return v, nil

	case tea.KeyMsg:
		v.toast = ""
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.viewing {
			return v.updateViewing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := v.visibleTasks()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Logout):
		return v, endSession(nil)

	case key.Matches(msg, v.keys.Back):
		if v.scope == ScopeProject {
			v.ShowMine()
		}
		return v, nil

	case msg.String() == "p":
		return v, func() tea.Msg { return ShowProjectBrowse{} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(visible)-1 {
			v.cursor++
		}
		return v, nil

	case msg.String() == "1" || msg.String() == "2" || msg.String() == "3" || msg.String() == "4":
		v.switchTab(msg.String())
		v.cursor = 0
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.cursor < len(visible) {
			task := visible[v.cursor]
			v.detailLoading = true
			return v, v.loadDetail(task.ProjectID, task.ID)
		}
		return v, nil

	case msg.String() == "c":
		if v.cursor < len(visible) {
			return v, v.toggleDone(visible[v.cursor])
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		if v.scope == ScopeProject {
			v.creating = true
			v.createFocusIdx = 0
			v.createErr = ""
			v.newTitle.Reset()
			v.newDesc.Reset()
			v.newPriority.Reset()
			v.newDue.Reset()
			v.updateCreateFocus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		if v.scope == ScopeProject {
			v.cache.InvalidateTasks(v.project.ID)
			v.loading = true
			return v, v.loadProjectTasks(v.project.ID)
		}
		return v, nil
	}

	return v, nil
}

func (v *TaskView) switchTab(k string) {
	if v.scope == ScopeMine {
		switch k {
		case "1":
			v.tab = filter.Upcoming
		case "2":
			v.tab = filter.Overdue
		case "3":
			v.tab = filter.Completed
		}
		return
	}
	switch k {
	case "1":
		v.status = ""
	case "2":
		v.status = models.StatusTodo
	case "3":
		v.status = models.StatusInProgress
	case "4":
		v.status = models.StatusDone
	}
}

func (v *TaskView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.commentFocus {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.commentFocus = false
			v.commentInput.Blur()
			return v, nil
		case msg.String() == "ctrl+s":
			body := strings.TrimSpace(v.commentInput.Value())
			if body == "" || v.posting {
				return v, nil
			}
			v.posting = true
			v.commentFocus = false
			v.commentInput.Blur()
			return v, v.postComment(v.detail.ProjectID, v.detail.ID, body)
		}
		var cmd tea.Cmd
		v.commentInput, cmd = v.commentInput.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewing = false
		return v, nil
	case msg.String() == "a":
		v.commentFocus = true
		v.commentInput.Focus()
		return v, textarea.Blink
	case msg.String() == "c":
		return v, v.toggleDone(v.detail)
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "shift+tab":
		v.createFocusIdx = (v.createFocusIdx + 4) % 5
		v.updateCreateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.createFocusIdx = (v.createFocusIdx + 1) % 5
		v.updateCreateFocus()
		return v, nil

	case msg.String() == "ctrl+s":
		return v.submitCreate()

	case key.Matches(msg, v.keys.Enter):
		if v.createFocusIdx == 4 {
			return v.submitCreate()
		}
		if v.createFocusIdx != 1 { // textarea keeps enter for newlines
			v.createFocusIdx++
			v.updateCreateFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.createFocusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case 2:
		v.newPriority, cmd = v.newPriority.Update(msg)
	case 3:
		v.newDue, cmd = v.newDue.Update(msg)
	}
	return v, cmd
}

func (v *TaskView) submitCreate() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(v.newTitle.Value())
	if title == "" {
		v.createErr = "Title is required."
		return v, nil
	}

	fields := cache.TaskFields{
		Title:       title,
		Description: strings.TrimSpace(v.newDesc.Value()),
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
	}

	switch strings.ToUpper(strings.TrimSpace(v.newPriority.Value())) {
	case "":
	case string(models.PriorityLow):
		fields.Priority = models.PriorityLow
	case string(models.PriorityMedium):
		fields.Priority = models.PriorityMedium
	case string(models.PriorityHigh):
		fields.Priority = models.PriorityHigh
	default:
		v.createErr = "Priority must be LOW, MED or HIGH."
		return v, nil
	}

	if due := strings.TrimSpace(v.newDue.Value()); due != "" {
		t, err := time.ParseInLocation("2006-01-02", due, time.Local)
		if err != nil {
			v.createErr = "Due date must be YYYY-MM-DD."
			return v, nil
		}
		fields.DueDate = models.NewDate(t)
	}

	v.createErr = ""
	return v, v.createTask(v.project.ID, fields)
}

func (v *TaskView) updateCreateFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	v.newPriority.Blur()
	v.newDue.Blur()
	switch v.createFocusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	case 2:
		v.newPriority.Focus()
	case 3:
		v.newDue.Focus()
	}
}

func (v *TaskView) View() string {
	if v.creating {
		return v.renderCreateForm()
	}
	if v.viewing {
		return v.renderDetail()
	}
	return v.renderList()
}

func (v *TaskView) renderList() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := "My tasks"
	if v.scope == ScopeProject {
		title = v.project.Name
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		s.Avatar.Render(filter.Initials(v.cache.User())),
		" ",
		s.Title.Render(title),
	)

	rows := []string{header, "", v.renderTabs(), ""}

	switch {
	case v.loading || v.detailLoading:
		rows = append(rows, s.TitleMuted.Render("Loading tasks..."))
	case v.loadErr != "":
		rows = append(rows, s.ErrorText.Render(v.loadErr))
	default:
		visible := v.visibleTasks()
		if len(visible) == 0 {
			rows = append(rows, s.TitleMuted.Render("No tasks in this section."))
		}
		for i, t := range visible {
			rows = append(rows, v.renderTaskRow(t, i == v.cursor))
		}
	}

	if v.toast != "" {
		rows = append(rows, "", s.ErrorText.Render(v.toast))
	}
	rows = append(rows, "", v.renderHelp())

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskView) renderTabs() string {
	s := v.styles
	if v.scope == ScopeMine {
		tabs := []struct {
			f     filter.TaskFilter
			label string
		}{
			{filter.Upcoming, "1 Upcoming"},
			{filter.Overdue, "2 Overdue"},
			{filter.Completed, "3 Completed"},
		}
		var parts []string
		for _, tab := range tabs {
			if tab.f == v.tab {
				parts = append(parts, s.TabActive.Render(tab.label))
			} else {
				parts = append(parts, s.Tab.Render(tab.label))
			}
		}
		return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	}

	tabs := []struct {
		st    models.Status
		label string
	}{
		{"", "1 All"},
		{models.StatusTodo, "2 To Do"},
		{models.StatusInProgress, "3 In Progress"},
		{models.StatusDone, "4 Done"},
	}
	var parts []string
	for _, tab := range tabs {
		if tab.st == v.status {
			parts = append(parts, s.TabActive.Render(tab.label))
		} else {
			parts = append(parts, s.Tab.Render(tab.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (v *TaskView) renderTaskRow(t models.Task, selected bool) string {
	s := v.styles

	check := "[ ]"
	if t.Status == models.StatusDone {
		check = "[x]"
	}

	var due string
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2")
	}

	parts := []string{check, t.Title}
	if v.scope == ScopeMine {
		name := v.cache.ProjectName(t.ProjectID)
		parts = append(parts, s.Tag.Render(filter.TruncateName(name, filter.TagNameMax)))
	}
	if t.Priority == models.PriorityHigh {
		parts = append(parts, s.TaskPriority.Render("!"))
	}
	if due != "" {
		parts = append(parts, s.TaskDue.Render(due))
	}

	row := strings.Join(parts, " ")
	if selected {
		return s.ListSelected.Render(row)
	}
	return s.ListItem.Render(row)
}

func (v *TaskView) renderDetail() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	t := v.detail

	meta := fmt.Sprintf("%s • %s", t.Status.Label(), t.Priority.Label())
	if t.DueDate != nil {
		meta += " • due " + t.DueDate.Format("Jan 2, 2006")
	}
	if t.Assignee != nil {
		meta += " • " + t.Assignee.FullName()
	}

	rows := []string{
		s.Title.Render(t.Title),
		s.TitleMuted.Render(meta),
		"",
	}
	if t.Description != "" {
		rows = append(rows, t.Description, "")
	}

	rows = append(rows, s.Title.Render(fmt.Sprintf("Comments (%d)", len(v.comments))))
	for _, c := range v.comments {
		author := c.Author.DisplayName()
		rows = append(rows,
			s.TitleMuted.Render(fmt.Sprintf("%s • %s", author, c.CreatedAt.Format("Jan 2 15:04"))),
			c.Body,
			"",
		)
	}

	if v.posting {
		rows = append(rows, s.TitleMuted.Render("Posting..."))
	} else if v.commentFocus {
		rows = append(rows, s.InputFocused.Render(v.commentInput.View()))
		rows = append(rows, s.TitleMuted.Render("Ctrl+S: post • Esc: cancel"))
	} else {
		rows = append(rows, s.TitleMuted.Render("a: add comment • c: toggle done • esc: back"))
	}

	if v.toast != "" {
		rows = append(rows, "", s.ErrorText.Render(v.toast))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	titleStyle := s.Input
	prioStyle := s.Input
	dueStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.createFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		prioStyle = s.InputFocused
	case 3:
		dueStyle = s.InputFocused
	case 4:
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render("New Task • " + v.project.Name),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		"Priority:",
		prioStyle.Width(inputWidth).Render(v.newPriority.View()),
		"",
		"Due date:",
		dueStyle.Width(inputWidth).Render(v.newDue.View()),
		"",
		btnStyle.Render(" Create "),
	}

	if v.createErr != "" {
		rows = append(rows, "", s.ErrorText.Render(v.createErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskView) renderHelp() string {
	s := v.styles
	extra := ""
	if v.scope == ScopeProject {
		extra = fmt.Sprintf(" • %s new • %s refresh • %s my tasks",
			s.HelpKey.Render("n"), s.HelpKey.Render("r"), s.HelpKey.Render("esc"))
	}
	return s.Help.Render(
		fmt.Sprintf("%s open • %s done • %s projects%s • %s quit",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("c"),
			s.HelpKey.Render("p"),
			extra,
			s.HelpKey.Render("q"),
		),
	)
}
