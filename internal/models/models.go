package models

import (
	"fmt"
	"strings"
	"time"
)

// Session holds the token pair for the current login. An empty string means
// the token is absent.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// LoggedIn reports whether an access token is present.
func (s Session) LoggedIn() bool { return s.AccessToken != "" }

// User is a snapshot of a user as returned by the server. Copies embedded in
// projects, tasks and comments are value snapshots taken at fetch time, not
// shared references.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// DisplayName returns the first name, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

// FullName returns "First Last", trimmed if either part is missing.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Project represents a task management project. The owner is always a member
// and the membership list carries no duplicate ids; both are server
// invariants the client preserves but never repairs.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       User      `json:"owner"`
	Members     []User    `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasMember reports whether the user id appears in the membership list.
func (p Project) HasMember(userID int64) bool {
	for _, m := range p.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Status is a task workflow state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "INPR"
	StatusDone       Status = "DONE"
)

// Label returns the human-readable form of a status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// Priority is a task priority level.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MED"
	PriorityHigh   Priority = "HIGH"
)

// Label returns the human-readable form of a priority.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// Task represents a single task. ProjectID may dangle if the project list
// has not been loaded yet; views render a placeholder name in that case.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Assignee    *User     `json:"assignee"`
	DueDate     *Date     `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Comment represents a comment on a task. Append-only from the client's
// perspective.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task"`
	Author    User      `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Date wraps time.Time to accept both RFC3339 datetimes and bare
// "2006-01-02" dates on the wire. Due dates are compared at day granularity.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from a time value.
func NewDate(t time.Time) *Date { return &Date{Time: t} }

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("models: unrecognized date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}
