package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/diveops/deco-validate/internal/archive"
	"github.com/diveops/deco-validate/internal/log"
	"github.com/diveops/deco-validate/pkg/migrate"
	_ "modernc.org/sqlite" // SQLite driver
)

func main() {
	var (
		dbPath        = flag.String("archive", "", "Path to the SQLite run archive")
		command       = flag.String("command", "status", "Migration command: up, down, to, version, status")
		targetVersion = flag.Int("target", -1, "Target version for down/to commands")
		debug         = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -archive flag is required\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, archive.Migrations(), log.GetSugaredLogger())

	switch *command {
	case "up":
		err = migrator.Up(ctx)
	case "down", "to":
		if *targetVersion < 0 {
			fmt.Fprintf(os.Stderr, "Error: -target flag is required for %s command\n", *command)
			os.Exit(1)
		}
		if *command == "down" {
			err = migrator.Down(ctx, *targetVersion)
		} else {
			err = migrator.To(ctx, *targetVersion)
		}
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			log.Fatalf("Failed to get current version: %v", err)
		}
		fmt.Printf("Current version: %d\n", version)
		return
	case "status":
		err = showStatus(ctx, migrator)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

func showStatus(ctx context.Context, migrator *migrate.Migrator) error {
	current, err := migrator.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.Pending(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Printf("Current version: %d\n", current)
	fmt.Printf("Pending migrations: %d\n", len(pending))
	for _, migration := range pending {
		fmt.Printf("  %d: %s\n", migration.Version, migration.Name)
	}
	return nil
}
