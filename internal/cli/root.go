package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/solace/internal/backup"
	"github.com/julianstephens/solace/internal/catalog"
	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/keyring"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/notifier"
	"github.com/julianstephens/solace/internal/storage"
	"github.com/julianstephens/solace/internal/storage/postgres"
	"github.com/julianstephens/solace/internal/storage/sqlite"
	"github.com/julianstephens/solace/internal/therapy"
	"github.com/julianstephens/solace/internal/tui"
)

type Context struct {
	Store   storage.Provider
	Catalog *catalog.Catalog
}

// NewService builds the onboarding pipeline. Reminders follow the stored
// settings; when settings cannot be read the defaults apply.
func (c *Context) NewService() *therapy.Service {
	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Warn("Failed to read settings, using defaults", "error", err)
		settings = storage.DefaultSettings()
	}
	return therapy.NewService(c.Store, c.Catalog.Questions, notifier.NewScheduler(c.Store, settings))
}

// OpenStore picks the storage backend for config. A PostgreSQL URL or DSN selects
// the postgres backend; otherwise config is a SQLite path. When config is the
// default path, a connection string from the environment or keyring wins.
func OpenStore(config string) (storage.Provider, error) {
	connStr := config
	if !isPostgres(config) {
		if config == constants.DefaultConfigPath {
			resolved, err := keyring.ResolveConnectionString()
			if err != nil {
				logger.Warn("Keyring lookup failed", "error", err)
			}
			connStr = resolved
		} else {
			connStr = ""
		}
	}

	if connStr != "" {
		if _, err := postgres.ValidateConnString(connStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded passwords are not allowed; use ~/.pgpass or PGPASSWORD instead")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

func isPostgres(config string) bool {
	return postgres.IsURL(config) || strings.Contains(config, "host=")
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// ConfigDir returns the directory holding logs and other local state
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.AppName), nil
}

// ParseEmotion parses an "emotion:confidence" pair such as "sad:0.8".
// An empty string yields no signal.
func ParseEmotion(s string) (*models.EmotionSignal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	name, conf, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("invalid emotion %q: expected emotion:confidence, e.g. sad:0.8", s)
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(conf), 64)
	if err != nil || confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("invalid emotion confidence %q: expected a number between 0 and 1", conf)
	}
	return &models.EmotionSignal{
		Emotion:    strings.ToLower(strings.TrimSpace(name)),
		Confidence: confidence,
	}, nil
}

// ActivityTitle resolves an activity id to its display title
func (c *Context) ActivityTitle(id string) string {
	if a, ok := c.Catalog.Activity(id); ok {
		return a.Title
	}
	return id
}

// Backups returns the snapshot manager for a SQLite store
func (c *Context) Backups() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite databases; use pg_dump for PostgreSQL")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// AutomaticBackup snapshots a SQLite store. Failures are logged, never returned.
func (c *Context) AutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	if _, err := backup.NewManager(c.Store.GetConfigPath()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// RunTUI launches the interactive front end against the context's store and catalog
func (c *Context) RunTUI(deps tui.Deps) error {
	deps.Gateway = c.Store
	deps.Catalog = c.Catalog
	deps.Service = c.NewService()

	model := tui.NewModel(context.Background(), deps)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session failed: %w", err)
	}
	return nil
}
