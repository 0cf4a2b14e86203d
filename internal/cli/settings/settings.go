package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/notifier"
	"github.com/julianstephens/solace/internal/storage"
	"github.com/julianstephens/solace/internal/therapy"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	NotificationsEnabled *bool   `help:"Enable or disable practice reminders."`
	ReminderTime         *string `help:"Daily reminder time (HH:MM)."`
	WeeklyCheckDay       *string `help:"Day of the weekly progress check, e.g. sunday."`
	SessionPacing        *string `help:"Session pacing: real or fast."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Reminder Time:         %s\n", settings.ReminderTime)
		fmt.Printf("  Weekly Check Day:      %s\n", settings.WeeklyCheckDay)
		fmt.Printf("  Session Pacing:        %s\n", settings.SessionPacing)
		return nil
	}

	updated := false
	reschedule := false
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated, reschedule = true, true
	}
	if c.ReminderTime != nil {
		settings.ReminderTime = *c.ReminderTime
		updated, reschedule = true, true
	}
	if c.WeeklyCheckDay != nil {
		settings.WeeklyCheckDay = *c.WeeklyCheckDay
		updated, reschedule = true, true
	}
	if c.SessionPacing != nil {
		settings.SessionPacing = *c.SessionPacing
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := storage.ValidateSettings(settings); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")

	if reschedule {
		rescheduleReminders(ctx)
	}
	return nil
}

// rescheduleReminders re-creates the pending daily and weekly reminders for the
// latest plan so new times take effect. Failures only warn.
func rescheduleReminders(ctx *cli.Context) {
	bg := context.Background()
	latest, err := therapy.NewService(ctx.Store, ctx.Catalog.Questions, nil).LoadLatest(bg)
	if err != nil {
		logger.Debug("No plan to reschedule reminders for", "error", err)
		return
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		logger.Warn("Failed to reload settings", "error", err)
		return
	}
	sched := notifier.NewScheduler(ctx.Store, settings)
	if err := sched.ScheduleDailyReminders(bg, latest.Plan); err != nil {
		logger.Warn("Failed to reschedule daily reminders", "error", err)
		fmt.Println("Warning: daily reminders could not be rescheduled.")
	}
	if err := sched.ScheduleWeeklyProgressCheck(bg); err != nil {
		logger.Warn("Failed to reschedule weekly check", "error", err)
		fmt.Println("Warning: the weekly progress check could not be rescheduled.")
	}
}
