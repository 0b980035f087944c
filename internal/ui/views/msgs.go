package views

import "github.com/hdngo/taskdeck/internal/models"

// Messages exchanged between screens and the app shell.

// LoggedInMsg signals a successful login; the app kicks off the initial
// state load.
type LoggedInMsg struct{}

// SessionEndedMsg resets the client to the logged-out state. Err is nil for
// an explicit logout and carries the session error otherwise.
type SessionEndedMsg struct {
	Err error
}

// SelectedProject opens a project's task list.
type SelectedProject struct {
	Project models.Project
}

// ShowMyTasks switches to the personal task view.
type ShowMyTasks struct{}

// ShowProjectBrowse switches to the project browser.
type ShowProjectBrowse struct{}
