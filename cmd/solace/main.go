package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/solace/internal/catalog"
	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/cli/backups"
	"github.com/julianstephens/solace/internal/cli/plans"
	"github.com/julianstephens/solace/internal/cli/settings"
	"github.com/julianstephens/solace/internal/cli/system"
	"github.com/julianstephens/solace/internal/constants"
	apperrors "github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path or PostgreSQL connection string. PostgreSQL connection strings must NOT embed a password; use ~/.pgpass, PGPASSWORD or the OS keyring." type:"string" default:"${default_config}"`
	Debug    bool   `help:"Log debug output to stderr."`
	LogLevel string `help:"Minimum level written to the log file (debug, info, warn, error)." env:"SOLACE_LOG_LEVEL"`
	Catalog  string `help:"YAML file overriding the built-in questions, activities and disorder profiles." type:"path"`

	Init     system.InitCmd       `cmd:"" help:"Initialize solace storage."`
	Session  system.SessionCmd    `cmd:"" help:"Open today's plan and run activities." default:"1"`
	Assess   plans.AssessCmd      `cmd:"" help:"Take the intake assessment and generate a plan."`
	Plan     plans.PlanCmd        `cmd:"" help:"Show today's remaining activities."`
	History  plans.HistoryCmd     `cmd:"" help:"Show recent sessions."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.CreateCmd  `cmd:"" help:"Snapshot the SQLite database."`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Replace the database with a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Notify system.NotifyCmd `cmd:"" hidden:"" help:"Deliver due reminders (run from cron)."`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Guided self-help: a short intake assessment and a daily plan of calming activities"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	configDir, err := cli.ConfigDir()
	if err != nil {
		apperrors.Fatal(fmt.Errorf("failed to resolve config directory: %w", err))
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir, Level: CLI.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	defer logger.Close()

	cat, err := catalog.Load(CLI.Catalog)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx := &cli.Context{Catalog: cat}

	// keyring commands must work even when the stored connection string is unusable
	command := ctx.Command()
	if !strings.HasPrefix(command, "keyring") {
		store, err := cli.OpenStore(CLI.Config)
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()

		// init handles its own setup and restore must work on a database that no longer loads
		if command != "init" && !strings.HasPrefix(command, "backup restore") {
			if err := store.Load(); err != nil {
				apperrors.Fatal(err)
			}
		}
		appCtx.Store = store
	}

	if err := ctx.Run(appCtx); err != nil {
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
		apperrors.Fatal(err)
	}
}
