package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/config"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/pkg/database"
)

func main() {
	down := flag.Int("down", 0, "number of migrations to roll back instead of migrating up")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dbCfg.URL(), database.PoolConfig{MaxConns: 2, MinConns: 1})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *down > 0 {
		if err := database.RollbackMigrations(db, *down); err != nil {
			slog.Error("Rollback failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Rolled back migrations", "steps", *down)
		return
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}
