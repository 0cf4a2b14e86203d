package postgres

import (
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/storage"
)

const upsertSetting = `
	INSERT INTO settings (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

func (s *Store) GetSettings() (models.Settings, error) {
	return storage.ReadSettings(s.db)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	return storage.WriteSettings(s.db, upsertSetting, settings)
}
