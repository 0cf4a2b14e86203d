package sqlite

import (
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/storage"
)

func (s *Store) GetSettings() (models.Settings, error) {
	return storage.ReadSettings(s.db)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	return storage.WriteSettings(s.db, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", settings)
}
