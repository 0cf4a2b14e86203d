package constants

const (
	SettingNotificationsEnabled = "notifications_enabled"
	SettingReminderTime         = "reminder_time"
	SettingWeeklyCheckDay       = "weekly_check_day"
	SettingSessionPacing        = "session_pacing"

	// Session pacing values
	PacingReal = "real"
	PacingFast = "fast"

	// Default Settings Values
	DefaultNotificationsEnabled = true
	DefaultReminderTime         = "09:00"
	DefaultWeeklyCheckDay       = "sunday"
	DefaultSessionPacing        = PacingReal
)
