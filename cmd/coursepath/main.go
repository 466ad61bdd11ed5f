package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/coursepath/internal/broadcast"
	"github.com/alexanderramin/coursepath/internal/cli"
	"github.com/alexanderramin/coursepath/internal/client"
	"github.com/alexanderramin/coursepath/internal/db"
	"github.com/alexanderramin/coursepath/internal/persist"
	"github.com/alexanderramin/coursepath/internal/service"
	"github.com/alexanderramin/coursepath/internal/store"
)

const defaultServerURL = "http://localhost:8000"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.coursepath/coursepath.db
	dbPath := os.Getenv("COURSEPATH_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".coursepath", "coursepath.db")
	}

	serverURL := os.Getenv("COURSEPATH_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var logWriter *os.File
	if os.Getenv("COURSEPATH_DEBUG") != "" {
		logWriter = os.Stderr
	}

	gateway := persist.NewGateway(database, nil)

	// Seed the store from the persisted records so derived statuses are
	// right even before the first successful fetch.
	ctx := context.Background()
	prefs := gateway.LoadPreferences(ctx)
	st := store.New(store.AppState{
		Completed:   gateway.LoadCompleted(ctx),
		Layout:      gateway.LoadLayout(ctx),
		SearchQuery: prefs.LastQuery,
		Filter:      prefs.LastFilter,
		ViewMode:    prefs.ViewMode,
		Prefs:       prefs,
	})

	var clientOpts []client.Option
	var svcOpts service.Options
	if logWriter != nil {
		clientOpts = append(clientOpts, client.WithObserver(client.NewLogObserver(logWriter)))
		svcOpts.Observer = service.NewLogUseCaseObserver(logWriter)
	}
	remote := client.New(serverURL, clientOpts...)

	courses := service.NewCourseService(remote, st, gateway, svcOpts)
	defer courses.Close()

	app := &cli.App{
		Courses:   courses,
		Store:     st,
		Broadcast: broadcast.New(),
	}

	return cli.NewRootCmd(app).Execute()
}
