package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/keyring"
	"github.com/julianstephens/solace/internal/storage/postgres"
)

// KeyringSetCmd stores the PostgreSQL connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		fmt.Println("Warning: connection string contains a password.")
		fmt.Println("  It will be kept in the encrypted OS keyring, but solace will refuse to use it.")
		fmt.Println("  Store the password in ~/.pgpass or PGPASSWORD and save the string without it.")
	}

	if err := keyring.SetConnectionString(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	fmt.Println("Connection string stored in OS keyring.")
	return nil
}

// KeyringDeleteCmd removes the stored connection string
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	fmt.Println("Connection string deleted from OS keyring.")
	return nil
}

// KeyringStatusCmd reports whether the keyring works and holds a connection string
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available on this system")
	}
	fmt.Println("OS keyring is available.")

	_, err := keyring.GetConnectionString()
	switch {
	case err == nil:
		fmt.Println("A connection string is stored.")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("No connection string is stored.")
	default:
		return fmt.Errorf("failed to read keyring: %w", err)
	}
	return nil
}
