// Package filter derives filtered projections from cached entities. Every
// function is pure; views recompute on each relevant change.
package filter

import (
	"strings"
	"time"
	"unicode"

	"github.com/hdngo/taskdeck/internal/models"
)

// TaskFilter is the three-way partition used by the personal task view.
type TaskFilter string

const (
	Upcoming  TaskFilter = "upcoming"
	Overdue   TaskFilter = "overdue"
	Completed TaskFilter = "completed"
)

// Display-name truncation limits. Presentation contracts, not business
// rules.
const (
	SidebarNameMax = 20
	TagNameMax     = 10
)

// Tasks returns the tasks matching f relative to ref. The comparison is at
// day granularity: ref is truncated to its local midnight, so a task due on
// the reference day is never overdue. Together the three filters partition
// any task set exhaustively and disjointly.
func Tasks(tasks []models.Task, f TaskFilter, ref time.Time) []models.Task {
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, f, midnight) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t models.Task, f TaskFilter, midnight time.Time) bool {
	switch f {
	case Completed:
		return t.Status == models.StatusDone
	case Overdue:
		return t.Status != models.StatusDone && dueBefore(t.DueDate, midnight)
	case Upcoming:
		return t.Status != models.StatusDone && !dueBefore(t.DueDate, midnight)
	}
	return true
}

// dueBefore compares calendar days. The due date's year/month/day is rebuilt
// as midnight in the reference's location, so a wire date parsed in another
// zone still lands on its intended day.
func dueBefore(d *models.Date, midnight time.Time) bool {
	if d == nil {
		return false
	}
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, midnight.Location())
	return day.Before(midnight)
}

// ByStatus returns the tasks with the given status. The zero value matches
// everything (the "all" tab in project-scoped views).
func ByStatus(tasks []models.Task, status models.Status) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// TruncateName ellipsis-truncates a display name longer than max runes.
func TruncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max]) + "..."
}

// ExcludeMembers filters search results down to users not already in the
// project's membership set.
func ExcludeMembers(users []models.User, project models.Project) []models.User {
	memberIDs := make(map[int64]struct{}, len(project.Members))
	for _, m := range project.Members {
		memberIDs[m.ID] = struct{}{}
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if _, ok := memberIDs[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out
}

// Initials renders avatar initials from the user's first name, falling back
// to the username: first rune of each space-separated word, uppercased.
func Initials(u models.User) string {
	var b strings.Builder
	for _, word := range strings.Fields(u.DisplayName()) {
		for _, r := range word {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return b.String()
}
