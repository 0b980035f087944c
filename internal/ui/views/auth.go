package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/hdngo/taskdeck/internal/session"
	"github.com/hdngo/taskdeck/internal/ui/keys"
	"github.com/hdngo/taskdeck/internal/ui/styles"
)

type authMode int

const (
	modeLogin authMode = iota
	modeSignup
)

// AuthView is the login/signup screen shown while no session exists.
type AuthView struct {
	api    *session.Client
	log    *zap.SugaredLogger
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	mode     authMode
	focusIdx int
	busy     bool
	errMsg   string
	toast    string

	username textinput.Model
	password textinput.Model

	suUsername textinput.Model
	suEmail    textinput.Model
	suPassword textinput.Model
	suConfirm  textinput.Model
}

// NewAuthView creates the auth screen in login mode.
func NewAuthView(api *session.Client, log *zap.SugaredLogger) *AuthView {
	s := styles.NewStyles()

	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 150

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	suUsername := textinput.New()
	suUsername.Placeholder = "Username"
	suUsername.CharLimit = 150

	suEmail := textinput.New()
	suEmail.Placeholder = "Email"
	suEmail.CharLimit = 254

	suPassword := textinput.New()
	suPassword.Placeholder = "Password (min 8 chars)"
	suPassword.EchoMode = textinput.EchoPassword
	suPassword.CharLimit = 128

	suConfirm := textinput.New()
	suConfirm.Placeholder = "Confirm password"
	suConfirm.EchoMode = textinput.EchoPassword
	suConfirm.CharLimit = 128

	v := &AuthView{
		api:        api,
		log:        log,
		styles:     s,
		keys:       keys.DefaultKeyMap(),
		username:   username,
		password:   password,
		suUsername: suUsername,
		suEmail:    suEmail,
		suPassword: suPassword,
		suConfirm:  suConfirm,
	}
	v.username.Focus()
	return v
}

func (v *AuthView) Init() tea.Cmd {
	return textinput.Blink
}

type loginDoneMsg struct {
	err error
}

type signupDoneMsg struct {
	err error
}

func (v *AuthView) login() tea.Cmd {
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	return func() tea.Msg {
		return loginDoneMsg{err: v.api.Login(context.Background(), username, password)}
	}
}

func (v *AuthView) signup() tea.Cmd {
	req := session.SignupRequest{
		Username:        strings.TrimSpace(v.suUsername.Value()),
		Email:           strings.TrimSpace(v.suEmail.Value()),
		Password:        v.suPassword.Value(),
		ConfirmPassword: v.suConfirm.Value(),
	}
	return func() tea.Msg {
		_, err := v.api.Signup(context.Background(), req)
		return signupDoneMsg{err: err}
	}
}

func (v *AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginDoneMsg:
		v.busy = false
		if msg.err != nil {
			// One fixed line for any login rejection; the server's detail
			// is not shown here.
			v.errMsg = "Invalid username or password."
			return v, nil
		}
		return v, func() tea.Msg { return LoggedInMsg{} }

	case signupDoneMsg:
		v.busy = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		// Signup does not establish a session; drop back to login.
		v.mode = modeLogin
		v.toast = "Account created successfully!"
		v.focusIdx = 0
		v.updateFocus()
		return v, nil

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "ctrl+t":
			// Toggle between login and signup forms.
			if v.mode == modeLogin {
				v.mode = modeSignup
			} else {
				v.mode = modeLogin
			}
			v.errMsg = ""
			v.toast = ""
			v.focusIdx = 0
			v.updateFocus()
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + v.fieldCount() - 1) % v.fieldCount()
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % v.fieldCount()
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < v.fieldCount()-1 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v.submit()

		case msg.String() == "ctrl+s":
			return v.submit()
		}
	}

	var cmd tea.Cmd
	switch {
	case v.mode == modeLogin && v.focusIdx == 0:
		v.username, cmd = v.username.Update(msg)
	case v.mode == modeLogin && v.focusIdx == 1:
		v.password, cmd = v.password.Update(msg)
	case v.mode == modeSignup && v.focusIdx == 0:
		v.suUsername, cmd = v.suUsername.Update(msg)
	case v.mode == modeSignup && v.focusIdx == 1:
		v.suEmail, cmd = v.suEmail.Update(msg)
	case v.mode == modeSignup && v.focusIdx == 2:
		v.suPassword, cmd = v.suPassword.Update(msg)
	case v.mode == modeSignup && v.focusIdx == 3:
		v.suConfirm, cmd = v.suConfirm.Update(msg)
	}
	return v, cmd
}

func (v *AuthView) submit() (tea.Model, tea.Cmd) {
	v.errMsg = ""
	v.toast = ""

	if v.mode == modeLogin {
		if strings.TrimSpace(v.username.Value()) == "" || v.password.Value() == "" {
			v.errMsg = "Username and password are required."
			return v, nil
		}
		v.busy = true
		return v, v.login()
	}

	if strings.TrimSpace(v.suUsername.Value()) == "" || v.suPassword.Value() == "" {
		v.errMsg = "Username and password are required."
		return v, nil
	}
	v.busy = true
	return v, v.signup()
}

func (v *AuthView) fieldCount() int {
	if v.mode == modeLogin {
		return 2
	}
	return 4
}

func (v *AuthView) updateFocus() {
	for _, input := range []*textinput.Model{
		&v.username, &v.password,
		&v.suUsername, &v.suEmail, &v.suPassword, &v.suConfirm,
	} {
		input.Blur()
	}

	if v.mode == modeLogin {
		switch v.focusIdx {
		case 0:
			v.username.Focus()
		case 1:
			v.password.Focus()
		}
		return
	}
	switch v.focusIdx {
	case 0:
		v.suUsername.Focus()
	case 1:
		v.suEmail.Focus()
	case 2:
		v.suPassword.Focus()
	case 3:
		v.suConfirm.Focus()
	}
}

func (v *AuthView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	var rows []string
	if v.mode == modeLogin {
		rows = []string{
			s.Title.Render("taskdeck • Sign In"),
			"",
			v.inputRow("Username:", v.username, v.focusIdx == 0, inputWidth),
			"",
			v.inputRow("Password:", v.password, v.focusIdx == 1, inputWidth),
		}
	} else {
		rows = []string{
			s.Title.Render("taskdeck • Create Account"),
			"",
			v.inputRow("Username:", v.suUsername, v.focusIdx == 0, inputWidth),
			"",
			v.inputRow("Email:", v.suEmail, v.focusIdx == 1, inputWidth),
			"",
			v.inputRow("Password:", v.suPassword, v.focusIdx == 2, inputWidth),
			"",
			v.inputRow("Confirm:", v.suConfirm, v.focusIdx == 3, inputWidth),
		}
	}

	switch {
	case v.busy:
		rows = append(rows, "", s.TitleMuted.Render("Signing in..."))
	case v.errMsg != "":
		rows = append(rows, "", s.ErrorText.Render(v.errMsg))
	case v.toast != "":
		rows = append(rows, "", s.Toast.Render(v.toast))
	}

	toggle := "Ctrl+T: sign up instead"
	if v.mode == modeSignup {
		toggle = "Ctrl+T: back to sign in"
	}
	rows = append(rows, "", s.TitleMuted.Render("↵: submit • "+toggle+" • Ctrl+C: quit"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *AuthView) inputRow(label string, input textinput.Model, focused bool, width int) string {
	style := v.styles.Input
	if focused {
		style = v.styles.InputFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		style.Width(width).Render(input.View()),
	)
}
