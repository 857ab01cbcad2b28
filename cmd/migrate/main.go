package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/db"
	"github.com/angelmondragon/its27-backend/pkg/env"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"github.com/angelmondragon/its27-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate", Format: env.Get("ITS27_LOG_FORMAT", "json")})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "up|down|status|to|create|validate")
	dir := flag.String("dir", "", "migrations directory; empty uses the set embedded in the binary (create/validate default to "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name for -cmd=create")
	version := flag.String("version", "", "target YYYYMMDDHHMMSS for -cmd=to")
	flag.Parse()

	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create", nil)
		}
		path, err := migrate.CreateSQLMigration(orDefault(*dir), *name)
		if err != nil {
			fail("create migration", err)
		}
		fmt.Println("created", path)
		return
	case "validate":
		if err := migrate.ValidateDir(orDefault(*dir)); err != nil {
			fail("validate migrations", err)
		}
		fmt.Println("migrations ok")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "config load failed", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if cfg.FeatureFlags.UseSQLite {
		if *cmd != "up" {
			fail("sqlite databases only support -cmd=up", nil)
		}
		if err := migrate.AutoMigrate(ctx, dbClient); err != nil {
			fail("auto migrate", err)
		}
		logg.Info(ctx, "sqlite schema migrated")
		return
	}

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		fail("sql handle", err)
	}
	runner, err := migrate.NewRunner(sqlDB, migrate.Source(*dir), logg)
	if err != nil {
		fail("migration runner", err)
	}

	switch *cmd {
	case "up":
		err = runner.Up(ctx)
	case "down":
		err = runner.Down(ctx)
	case "status":
		err = runner.Status(ctx, os.Stdout)
	case "to":
		if *version == "" {
			fail("missing -version for -cmd=to", nil)
		}
		err = runner.To(ctx, *version)
	default:
		fail("unknown -cmd "+*cmd, nil)
	}
	if err != nil {
		fail(*cmd, err)
	}
}

func orDefault(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

func fail(what string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	} else {
		fmt.Fprintln(os.Stderr, what)
	}
	os.Exit(1)
}
