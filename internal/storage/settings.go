package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/models"
)

// DefaultSettings returns the settings written by init
func DefaultSettings() models.Settings {
	return models.Settings{
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		ReminderTime:         constants.DefaultReminderTime,
		WeeklyCheckDay:       constants.DefaultWeeklyCheckDay,
		SessionPacing:        constants.DefaultSessionPacing,
	}
}

func settingPairs(s models.Settings) [][2]string {
	return [][2]string{
		{constants.SettingNotificationsEnabled, strconv.FormatBool(s.NotificationsEnabled)},
		{constants.SettingReminderTime, s.ReminderTime},
		{constants.SettingWeeklyCheckDay, s.WeeklyCheckDay},
		{constants.SettingSessionPacing, s.SessionPacing},
	}
}

// applySetting ignores keys it does not know so older binaries can read newer tables
func applySetting(s *models.Settings, key, value string) {
	switch key {
	case constants.SettingNotificationsEnabled:
		s.NotificationsEnabled = value == "true"
	case constants.SettingReminderTime:
		s.ReminderTime = value
	case constants.SettingWeeklyCheckDay:
		s.WeeklyCheckDay = value
	case constants.SettingSessionPacing:
		s.SessionPacing = value
	}
}

// ReadSettings loads the key/value settings table. An empty table is ErrNotFound.
func ReadSettings(db *sql.DB) (models.Settings, error) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var (
		settings models.Settings
		seen     bool
	)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		applySetting(&settings, key, value)
		seen = true
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	if !seen {
		return models.Settings{}, fmt.Errorf("settings: %w", errors.ErrNotFound)
	}
	return settings, nil
}

// WriteSettings upserts every setting in one transaction. upsert takes the key
// and value as its two parameters in the backend's placeholder syntax.
func WriteSettings(db *sql.DB, upsert string, settings models.Settings) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, kv := range settingPairs(settings) {
		if _, err := tx.Exec(upsert, kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

// ValidateSettings checks values before they are saved
func ValidateSettings(s models.Settings) error {
	if _, err := time.Parse(constants.TimeFormat, s.ReminderTime); err != nil {
		return fmt.Errorf("invalid reminder time %q: expected HH:MM", s.ReminderTime)
	}
	if _, ok := ParseWeekday(s.WeeklyCheckDay); !ok {
		return fmt.Errorf("invalid weekly check day %q", s.WeeklyCheckDay)
	}
	if s.SessionPacing != constants.PacingReal && s.SessionPacing != constants.PacingFast {
		return fmt.Errorf("invalid session pacing %q: expected %s or %s", s.SessionPacing, constants.PacingReal, constants.PacingFast)
	}
	return nil
}

// ParseWeekday accepts full English weekday names, case-insensitively
func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return time.Sunday, false
}
