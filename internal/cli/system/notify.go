package system

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/notifier"
)

// NotifyCmd delivers reminders that have come due. It is meant to run from cron
// or a launchd/systemd timer every few minutes.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`

	out io.Writer `kong:"-"`
}

type printSender struct {
	out io.Writer
}

func (s printSender) Notify(ctx context.Context, text string) error {
	_, err := fmt.Fprintln(s.out, "[DryRun] "+text)
	return err
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Fprintln(out, "Notifications are disabled in settings.")
		}
		return nil
	}

	var sender notifier.Sender = notifier.New()
	if c.DryRun {
		sender = printSender{out: out}
	}

	delivered, err := notifier.NewDispatcher(ctx.Store, sender).DeliverDue(context.Background())
	if c.DryRun {
		fmt.Fprintf(out, "Delivered %d reminder(s).\n", delivered)
	}
	return err
}
