// Command catalog-tool is the operator CLI for the image catalog
// database: schema bootstrap, base path registration and inspection
// without running the service.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"image-catalog/internal/catalog"
	"image-catalog/internal/health"
)

const defaultDatabasePath = "/database/catalog.db"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	dbPath := os.Getenv("CATALOG_DATABASE_PATH")
	if dbPath == "" {
		dbPath = defaultDatabasePath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	state := health.NewServiceState("catalog-tool")
	db, err := catalog.New(ctx, dbPath, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database at %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	switch command {
	case "init":
		// catalog.New has already applied the schema by this point.
		fmt.Printf("Database initialized at %s\n", dbPath)

	case "add-base-path":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Error: add-base-path requires a directory argument")
			os.Exit(1)
		}
		addBasePath(db, os.Args[2])

	case "list-base-paths":
		listBasePaths(db)

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func addBasePath(db *catalog.Database, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not an existing directory\n", abs)
		os.Exit(1)
	}

	id, err := db.AddBasePath(abs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Base path registered: %s (id %d)\n", abs, id)
}

func listBasePaths(db *catalog.Database) {
	entries, err := db.GetBasePaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No base paths registered")
		return
	}
	for _, entry := range entries {
		fmt.Printf("%4d  %s\n", entry.ID, entry.Path)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: catalog-tool <command> [args]

Commands:
  init                    Create the database and apply the schema
  add-base-path <dir>     Register a directory for cataloging
  list-base-paths         Print every registered base path

The database path is taken from CATALOG_DATABASE_PATH
(default %s).
`, defaultDatabasePath)
}
