// cmd/mcp-server/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"job-portal-workers/internal/common/config"
	"job-portal-workers/internal/common/database"
	"job-portal-workers/internal/mockapi"
)

func main() {
	s := server.NewMCPServer("job-portal-tools", "1.0.0")

	// stdout carries the protocol; diagnostics go to stderr.
	var jobs JobLister
	if path := storePath(); path != "" {
		db, err := database.OpenSQLiteReadOnly(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "list_jobs disabled: %v\n", err)
		} else {
			defer db.Close()
			jobs = mockapi.NewReadOnlyStore(db)
		}
	}

	registerTools(s, jobs)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// storePath prefers JOBPORTAL_STORE, then the mock API data dir from config.
func storePath() string {
	if env := os.Getenv("JOBPORTAL_STORE"); env != "" {
		return env
	}
	cfg, err := config.LoadMockAPI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config not loaded: %v\n", err)
		return ""
	}
	return filepath.Join(cfg.MockAPI.DataDir, "mockapi.db")
}
