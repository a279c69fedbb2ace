package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tnslabs/waconsole/internal/api"
	"github.com/tnslabs/waconsole/internal/config"
	"github.com/tnslabs/waconsole/internal/logger"
	"github.com/tnslabs/waconsole/internal/mediacache"
	"github.com/tnslabs/waconsole/internal/realtime"
	"github.com/tnslabs/waconsole/internal/session"
	"github.com/tnslabs/waconsole/internal/ui"
)

const version = "1.0.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Printf("waconsole v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := session.Open(cfg.StateDir)
	if err != nil {
		fmt.Printf("Session error: %v\n", err)
		os.Exit(1)
	}

	// Audit trail for sign-ins and sign-outs, whichever screen
	// triggered them.
	go func() {
		for st := range store.Subscribe() {
			if st.Authenticated && st.User != nil {
				logger.Log.Info("session authenticated",
					zap.String("user_id", st.User.ID),
					zap.String("role", st.User.Role))
			} else {
				logger.Log.Info("session cleared")
			}
		}
	}()

	client, err := api.New(api.Options{
		BaseURL:        cfg.API.BaseURL,
		BearerToken:    cfg.API.BearerToken,
		Timeout:        cfg.API.Timeout,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})
	if err != nil {
		fmt.Printf("API client error: %v\n", err)
		os.Exit(1)
	}

	cache, err := mediacache.Open(cfg.Media.CacheDir, client)
	if err != nil {
		fmt.Printf("Media cache error: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	subscriber, err := realtime.NewSubscriber(realtime.Options{
		URL:          cfg.Realtime.URL,
		Channel:      cfg.Realtime.Channel,
		Event:        cfg.Realtime.Event,
		PingInterval: cfg.Realtime.PingInterval,
		MaxBackoff:   cfg.Realtime.MaxBackoff,
	})
	if err != nil {
		fmt.Printf("Realtime error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := subscriber.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("realtime subscriber stopped", zap.Error(err))
		}
	}()

	app := &ui.App{
		Client:  client,
		Session: store,
		Media:   cache,
		Events:  subscriber.Events(),
	}

	p := tea.NewProgram(ui.NewProgram(app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `waconsole - WhatsApp customer messaging console

Usage:
  waconsole           Start the console
  waconsole version   Show version information
  waconsole help      Show this help message

Configuration:
  Reads waconsole.yaml from the working directory or ~/.waconsole/,
  plus WACONSOLE_* environment variables. api.baseURL and realtime.url
  are required.

Navigation:
  ↑/↓ or j/k         Navigate lists
  Enter              Select/Open item
  ESC                Go back
  q                  Quit from current view
  ctrl+c             Force quit

Chats:
  /                  Search contacts
  ctrl+s             Send message (while composing)
  ctrl+a             Attach a file (while composing)
  ctrl+t             Insert a template (while composing)
  R                  Retry a failed send
  o                  Download/open the latest media message
  r                  Refresh

Contacts (admin):
  a                  Assign an agent
  u                  Unassign the agent
  n                  Add a contact (+91 numbers only)

Templates:
  tab                Switch between ready-made and own templates
  n                  Create a template
  d                  Delete one of your templates

State:
  Session and logs live in ~/.waconsole/; downloaded media is cached
  under ~/.waconsole/media/.
`
	fmt.Print(help)
}
