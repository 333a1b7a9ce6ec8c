package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/db"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
	"github.com/angelmondragon/vendorverse-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", "", "goose migrations directory; defaults to the migrations built into the binary")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate work on files only
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(dirOrDefault(*dir), *name)
		if err != nil {
			fail("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		var err error
		if *dir == "" {
			err = migrate.ValidateFS(migrate.Embedded(), "migrations")
		} else {
			err = migrate.ValidateDir(*dir)
		}
		if err != nil {
			fail("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	// sqlite has no goose history; the models are the schema.
	if dbClient.Driver() == config.DBDriverSQLite {
		if *cmd != "up" {
			fail("sqlite only supports -cmd=up")
		}
		requireResource(ctx, logg, "sqlite auto-migrate", migrate.MaybeRun(ctx, cfg, logg, dbClient))
		logg.Info(ctx, "sqlite schema up to date")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, *dir, logg)
	requireResource(ctx, logg, "migration runner", err)

	switch *cmd {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "status":
		err = runner.Status(ctx, os.Stdout)
	case "version":
		if *version == "" {
			fail("missing -version for version command")
		}
		err = runner.To(ctx, *version)
	default:
		fail("unknown -cmd value: %s", *cmd)
	}
	if err != nil {
		fail("%s failed: %v", *cmd, err)
	}
	logg.Info(ctx, "migration finished")
}

func dirOrDefault(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
