package session

import (
	"context"
	"fmt"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/logger"
)

// maxHistoryPages bounds how far back Reconcile pages through session history
const maxHistoryPages = 10

// Reconcile rebuilds runtime state after a reload: it loads the most recent plan
// and removes every activity already completed today according to the session history.
func (r *Runtime) Reconcile(ctx context.Context) error {
	assessments, err := r.gateway.GetAssessments(ctx)
	if err != nil {
		logger.Warn("Failed to load assessments", "error", err)
		return errors.NewPersistenceError("get_assessments", err)
	}
	if len(assessments) == 0 {
		return fmt.Errorf("no assessment on record: %w", errors.ErrNotFound)
	}
	latest := assessments[0]

	now := r.opts.Now()
	today := now.Format(constants.DateFormat)

	completed, err := r.completedOn(ctx, today)
	if err != nil {
		// Optimistic: show the full plan rather than nothing
		logger.Warn("Failed to load session history", "error", err)
		r.emitNotice(NoticeWarning, "Couldn't load today's history. Some finished activities may be shown again.")
	}

	plan := latest.Plan.Clone()
	remaining := NewActivitySet(NewActivitySet(plan.ForDay(today)...).Except("", completed)...)

	r.mu.Lock()
	if r.busyLocked() {
		state := r.phase.String()
		r.mu.Unlock()
		return &errors.StateConflictError{State: state}
	}
	r.assessmentID = latest.ID
	r.plan = plan
	r.remaining = remaining
	r.completedToday = completed
	r.day = today
	r.sessionsToday = completed.Len()
	r.phase = r.idlePhaseLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	logger.Info("Runtime reconciled", "assessment_id", latest.ID, "completed_today", completed.Len(), "available", len(snap.Available))
	r.emitChange(snap)
	return nil
}

// completedOn collects ids of catalog activities with a completed record on day.
// History is newest first, so paging stops at the first record older than day.
func (r *Runtime) completedOn(ctx context.Context, day string) (*ActivitySet, error) {
	completed := NewActivitySet()
	loc := r.opts.Now().Location()

	for page := 0; page < maxHistoryPages; page++ {
		records, err := r.gateway.ListSessions(ctx, constants.HistoryFetchLimit, page*constants.HistoryFetchLimit)
		if err != nil {
			return completed, errors.NewPersistenceError("list_sessions", err)
		}

		older := false
		for _, rec := range records {
			recDay := rec.CreatedAt.In(loc).Format(constants.DateFormat)
			if recDay < day {
				older = true
				continue
			}
			if !rec.Completed || recDay != day {
				continue
			}
			if _, ok := r.catalog.Activity(rec.ActivityID); !ok {
				logger.Debug("Discarding history record for unknown activity", "activity_id", rec.ActivityID)
				continue
			}
			completed.add(rec.ActivityID)
		}

		if older || len(records) < constants.HistoryFetchLimit {
			break
		}
	}
	return completed, nil
}
