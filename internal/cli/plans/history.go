package plans

import (
	"context"
	"fmt"

	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/models"
)

type HistoryCmd struct {
	Limit int `help:"Number of sessions to show." default:"20"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	records, err := ctx.Store.ListSessions(context.Background(), c.Limit, 0)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No sessions yet. Run 'solace session' to start one.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %-10s %-28s %3d%%  %d min\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), status(r), r.ActivityName, r.Progress, r.DurationMinutes)
	}
	return nil
}

func status(r models.SessionRecord) string {
	switch {
	case r.Completed:
		return "completed"
	case r.Notes != "":
		return r.Notes
	default:
		return "started"
	}
}
