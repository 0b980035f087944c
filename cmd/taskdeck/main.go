package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hdngo/taskdeck/internal/cache"
	"github.com/hdngo/taskdeck/internal/config"
	"github.com/hdngo/taskdeck/internal/credstore"
	"github.com/hdngo/taskdeck/internal/logging"
	"github.com/hdngo/taskdeck/internal/session"
	"github.com/hdngo/taskdeck/internal/ui"
	"github.com/hdngo/taskdeck/internal/ui/views"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("taskdeck %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger, cleanup, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	store, err := credstore.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening credential store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	api := session.New(cfg.API.BaseURL, cfg.API.Timeout, store, logger)
	entities := cache.New(api, logger)

	// Create and run the application
	app := ui.NewApp(api, entities, store, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// A failed refresh anywhere resets the whole UI to the login screen.
	api.OnSessionExpired(func() {
		p.Send(views.SessionEndedMsg{Err: session.ErrSessionExpired})
	})

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}
