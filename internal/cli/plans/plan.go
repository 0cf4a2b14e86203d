package plans

import (
	"context"
	"fmt"

	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/session"
)

// PlanCmd prints today's remaining activities from the most recent plan
type PlanCmd struct {
	Goals bool `help:"Also print plan goals and monitoring notes."`
}

func (c *PlanCmd) Run(ctx *cli.Context) error {
	rt := session.New(ctx.Store, ctx.Catalog, session.Options{
		OnNotice: func(n session.Notice) { fmt.Println(n.Text) },
	})
	defer rt.Close()

	if err := rt.Reconcile(context.Background()); err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}
	snap := rt.Snapshot()
	plan := snap.Plan

	fmt.Printf("Plan %s: %d of %s complete\n", shortID(snap.AssessmentID), plan.DaysCompleted, plan.DurationLabel)
	if c.Goals {
		fmt.Println("\nGoals:")
		for _, g := range plan.Goals {
			fmt.Printf("  - %s\n", g)
		}
		fmt.Println("\nMonitoring:")
		for _, m := range plan.Monitoring {
			fmt.Printf("  - %s\n", m)
		}
	}

	if snap.Phase == session.PhaseAllDone {
		fmt.Println("\nEvery activity for today is done.")
		return nil
	}

	fmt.Println("\nToday:")
	for _, id := range snap.Available {
		if a, ok := ctx.Catalog.Activity(id); ok {
			fmt.Printf("  [ ] %-28s %d min\n", a.Title, a.DurationMinutes)
		} else {
			fmt.Printf("  [ ] %s\n", id)
		}
	}
	for _, id := range snap.CompletedToday {
		fmt.Printf("  [x] %s\n", ctx.ActivityTitle(id))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
