package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
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

// Searches below this length are not sent to the server.
const searchMinChars = 2

// MembersPanel manages a project's membership: live user search to add,
// cursor over the current members to remove. The owner row never offers
// removal.
type MembersPanel struct {
	cache  *cache.Cache
	log    *zap.SugaredLogger
	styles *styles.Styles
	keys   keys.KeyMap

	project models.Project
	width   int
	height  int

	search       textinput.Model
	results      []models.User
	resultCursor int
	memberCursor int
	searching    bool

	// A mutation plus its confirming re-fetch is in flight; the panel shows
	// a loading state rather than a stale-but-confident membership list.
	busy   bool
	errMsg string
}

// NewMembersPanel opens member management for a project.
func NewMembersPanel(c *cache.Cache, log *zap.SugaredLogger, project models.Project, width, height int) *MembersPanel {
	search := textinput.New()
	search.Placeholder = "Search by username or email..."
	search.CharLimit = 100
	search.Focus()

	return &MembersPanel{
		cache:   c,
		log:     log,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
		project: project,
		width:   width,
		height:  height,
		search:  search,
	}
}

func (p *MembersPanel) Init() tea.Cmd {
	return textinput.Blink
}

// SetProject swaps in a refreshed project snapshot after a membership
// mutation confirmed.
func (p *MembersPanel) SetProject(project models.Project) {
	p.project = project
	if p.memberCursor >= len(project.Members) {
		p.memberCursor = max(0, len(project.Members)-1)
	}
}

type memberSearchMsg struct {
	projectID int64
	query     string
	users     []models.User
}

type memberSearchFailedMsg struct {
	err error
}

func (p *MembersPanel) runSearch(query string) tea.Cmd {
	projectID := p.project.ID
	return func() tea.Msg {
		users, err := p.cache.SearchUsers(context.Background(), query)
		if err != nil {
			return memberSearchFailedMsg{err: err}
		}
		return memberSearchMsg{projectID: projectID, query: query, users: users}
	}
}

type membershipChangedMsg struct {
	projectID int64
}

type membershipFailedMsg struct {
	err error
}

func (p *MembersPanel) addMember(userID int64) tea.Cmd {
	projectID := p.project.ID
	return func() tea.Msg {
		if err := p.cache.AddMember(context.Background(), projectID, userID); err != nil {
			return membershipFailedMsg{err: err}
		}
		return membershipChangedMsg{projectID: projectID}
	}
}

func (p *MembersPanel) removeMember(userID int64) tea.Cmd {
	projectID := p.project.ID
	return func() tea.Msg {
		if err := p.cache.RemoveMember(context.Background(), projectID, userID); err != nil {
			return membershipFailedMsg{err: err}
		}
		return membershipChangedMsg{projectID: projectID}
	}
}

// Update handles a message. done is true when the panel should close.
func (p *MembersPanel) Update(msg tea.Msg) (done bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return false, nil

	case memberSearchMsg:
		// Stale results for an older query are discarded.
		if msg.projectID != p.project.ID || msg.query != strings.TrimSpace(p.search.Value()) {
			return false, nil
		}
		p.searching = false
		p.results = filter.ExcludeMembers(msg.users, p.project)
		if p.resultCursor >= len(p.results) {
			p.resultCursor = max(0, len(p.results)-1)
		}
		return false, nil

	case memberSearchFailedMsg:
		if session.IsAuthError(msg.err) {
			return false, endSession(msg.err)
		}
		p.searching = false
		p.errMsg = "Search failed."
		return false, nil

	case membershipChangedMsg:
		p.busy = false
		p.search.Reset()
		p.results = nil
		if refreshed, ok := p.cache.Project(msg.projectID); ok {
			p.SetProject(refreshed)
		}
		return false, nil

	case membershipFailedMsg:
		p.busy = false
		if session.IsAuthError(msg.err) {
			return false, endSession(msg.err)
		}
		p.errMsg = msg.err.Error()
		return false, nil

	case tea.KeyMsg:
		if p.busy {
			return false, nil
		}
		return p.updateKeys(msg)
	}

	return false, nil
}

func (p *MembersPanel) updateKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	p.errMsg = ""

	switch {
	case key.Matches(msg, p.keys.Back):
		return true, nil

	case key.Matches(msg, p.keys.Up):
		if len(p.results) > 0 {
			if p.resultCursor > 0 {
				p.resultCursor--
			}
		} else if p.memberCursor > 0 {
			p.memberCursor--
		}
		return false, nil

	case key.Matches(msg, p.keys.Down):
		if len(p.results) > 0 {
			if p.resultCursor < len(p.results)-1 {
				p.resultCursor++
			}
		} else if p.memberCursor < len(p.project.Members)-1 {
			p.memberCursor++
		}
		return false, nil

	case key.Matches(msg, p.keys.Enter):
		if p.resultCursor < len(p.results) {
			p.busy = true
			return false, p.addMember(p.results[p.resultCursor].ID)
		}
		return false, nil

	case msg.String() == "ctrl+d":
		if p.memberCursor < len(p.project.Members) {
			member := p.project.Members[p.memberCursor]
			if member.ID == p.project.Owner.ID {
				p.errMsg = "The owner cannot be removed."
				return false, nil
			}
			p.busy = true
			return false, p.removeMember(member.ID)
		}
		return false, nil
	}

	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)

	query := strings.TrimSpace(p.search.Value())
	if len(query) >= searchMinChars {
		p.searching = true
		return false, tea.Batch(cmd, p.runSearch(query))
	}
	p.results = nil
	p.resultCursor = 0
	return false, cmd
}

func (p *MembersPanel) View() string {
	s := p.styles
	contentWidth := styles.ContentWidth(p.width)
	inputWidth := clamp(contentWidth-8, 20, 50)

	rows := []string{
		s.Title.Render("Manage Members"),
		s.TitleMuted.Render(fmt.Sprintf("For %q", p.project.Name)),
		"",
		"Add new member:",
		s.InputFocused.Width(inputWidth).Render(p.search.View()),
	}

	switch {
	case p.searching:
		rows = append(rows, s.TitleMuted.Render("Searching..."))
	case len(p.results) > 0:
		for i, u := range p.results {
			row := fmt.Sprintf("%s %s  @%s", s.Avatar.Render(filter.Initials(u)), u.FullName(), u.Username)
			if i == p.resultCursor {
				rows = append(rows, s.ListSelected.Render(row))
			} else {
				rows = append(rows, s.ListItem.Render(row))
			}
		}
	}

	rows = append(rows, "",
		s.Title.Render(fmt.Sprintf("Project Members (%d)", len(p.project.Members))))

	if p.busy {
		rows = append(rows, s.TitleMuted.Render("Updating membership..."))
	} else {
		for i, m := range p.project.Members {
			label := fmt.Sprintf("%s %s  @%s", s.Avatar.Render(filter.Initials(m)), m.FullName(), m.Username)
			if m.ID == p.project.Owner.ID {
				label += s.TitleMuted.Render(" (Owner)")
			}
			if i == p.memberCursor {
				rows = append(rows, s.ListSelected.Render(label))
			} else {
				rows = append(rows, s.ListItem.Render(label))
			}
		}
	}

	if p.errMsg != "" {
		rows = append(rows, "", s.ErrorText.Render(p.errMsg))
	}

	rows = append(rows, "",
		s.TitleMuted.Render("↵: add selected • Ctrl+D: remove member • Esc: close"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, p.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, p.width, p.height)
}
