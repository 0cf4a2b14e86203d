package models

type Settings struct {
	NotificationsEnabled bool
	ReminderTime         string // HH:MM
	WeeklyCheckDay       string // weekday name, lowercase
	SessionPacing        string // real | fast
}
