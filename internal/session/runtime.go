// Package session executes therapy activities one at a time against a plan,
// shrinking the plan as activities are completed.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/logger"
	"github.com/julianstephens/solace/internal/models"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleting
	PhaseAllDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleting:
		return "completing"
	case PhaseAllDone:
		return "all_done"
	default:
		return "unknown"
	}
}

// defaultActivityMinutes paces activities that declare no duration
const defaultActivityMinutes = 5

// Gateway is the persistence surface the runtime needs
type Gateway interface {
	SaveSession(ctx context.Context, record models.SessionRecord) error
	UpdatePlan(ctx context.Context, assessmentID string, plan models.TherapyPlan) error
	ListSessions(ctx context.Context, limit, offset int) ([]models.SessionRecord, error)
	GetAssessments(ctx context.Context) ([]models.StoredAssessment, error)
}

// Resolver looks activities up in the catalog
type Resolver interface {
	Activity(id string) (models.Activity, bool)
}

type Options struct {
	// Pacing is constants.PacingReal (tick spacing follows the activity's duration)
	// or constants.PacingFast (FastInterval per tick).
	Pacing          string
	ProgressStep    int
	FastInterval    time.Duration
	CompletionDelay time.Duration
	ResetDelay      time.Duration
	PersistTimeout  time.Duration
	Clock           Clock
	Now             func() time.Time

	OnChange func(Snapshot)
	OnNotice func(Notice)
}

// DefaultOptions returns production pacing and delays
func DefaultOptions() Options {
	return Options{
		Pacing:          constants.PacingReal,
		ProgressStep:    constants.ProgressStep,
		FastInterval:    constants.FastTickInterval,
		CompletionDelay: constants.CompletionFeedbackTime,
		ResetDelay:      constants.CompletionResetDelay,
		PersistTimeout:  constants.PersistTimeout,
		Clock:           RealClock(),
		Now:             time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Pacing == "" {
		o.Pacing = d.Pacing
	}
	if o.ProgressStep <= 0 || o.ProgressStep > 100 {
		o.ProgressStep = d.ProgressStep
	}
	if o.FastInterval <= 0 {
		o.FastInterval = d.FastInterval
	}
	if o.PersistTimeout <= 0 {
		o.PersistTimeout = d.PersistTimeout
	}
	if o.Clock == nil {
		o.Clock = d.Clock
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// Snapshot is a consistent view of the runtime at one instant
type Snapshot struct {
	Phase            Phase
	ActiveActivityID string
	Progress         int
	Available        []string
	CompletedToday   []string
	SessionsToday    int
	AssessmentID     string
	Plan             models.TherapyPlan
}

// activeSession is the durable record of what is being executed. Completion reads
// the activity id from here, never from display state.
type activeSession struct {
	id        string
	activity  models.Activity
	startedAt time.Time
}

type Runtime struct {
	mu      sync.Mutex
	gateway Gateway
	catalog Resolver
	opts    Options

	phase          Phase
	assessmentID   string
	plan           models.TherapyPlan
	remaining      *ActivitySet
	completedToday *ActivitySet
	day            string
	sessionsToday  int

	active   activeSession
	progress int
	// completing and finalizing guard the two halves of the completion path.
	// Each is checked and set under mu with no call in between.
	completing bool
	finalizing bool

	ticker     Timer
	delay      Timer
	tickGen    uint64
	sessionGen uint64

	wg sync.WaitGroup
}

func New(gateway Gateway, catalog Resolver, opts Options) *Runtime {
	opts = opts.withDefaults()
	return &Runtime{
		gateway:        gateway,
		catalog:        catalog,
		opts:           opts,
		remaining:      NewActivitySet(),
		completedToday: NewActivitySet(),
		day:            opts.Now().Format(constants.DateFormat),
	}
}

// SetPlan installs a freshly generated plan with nothing completed yet
func (r *Runtime) SetPlan(assessmentID string, plan models.TherapyPlan) error {
	r.mu.Lock()
	if r.busyLocked() {
		state := r.phase.String()
		r.mu.Unlock()
		return &errors.StateConflictError{State: state}
	}
	today := r.opts.Now().Format(constants.DateFormat)
	r.assessmentID = assessmentID
	r.plan = plan.Clone()
	r.remaining = NewActivitySet(plan.ForDay(today)...)
	r.completedToday = NewActivitySet()
	r.day = today
	r.sessionsToday = 0
	r.phase = r.idlePhaseLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emitChange(snap)
	return nil
}

// Start begins a timed session for an available activity. It is rejected with a
// StateConflictError while another session is running or completing.
func (r *Runtime) Start(activityID string) error {
	r.mu.Lock()
	if r.busyLocked() {
		state := r.phase.String()
		r.mu.Unlock()
		logger.Debug("Start rejected", "activity_id", activityID, "state", state)
		return &errors.StateConflictError{State: state}
	}

	r.rollDayLocked()
	if !r.remaining.Contains(activityID) || r.completedToday.Contains(activityID) {
		r.mu.Unlock()
		return &errors.ValidationError{Field: "activity", Value: activityID, Reason: "not available in today's plan"}
	}

	activity, ok := r.catalog.Activity(activityID)
	if !ok {
		r.mu.Unlock()
		logger.Warn("Start rejected: activity missing from catalog", "activity_id", activityID)
		return &errors.ValidationError{Field: "activity", Value: activityID, Reason: "not in the activity catalog"}
	}

	r.stopTimersLocked()
	r.sessionGen++
	r.active = activeSession{id: activityID, activity: activity, startedAt: r.opts.Now()}
	r.progress = 0
	r.completing = false
	r.finalizing = false
	r.phase = PhaseRunning

	gen := r.tickGen
	r.ticker = r.opts.Clock.Every(r.tickInterval(activity), func() { r.onTick(gen) })

	record := r.recordLocked(false, 0)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	logger.Info("Session started", "activity_id", activityID)
	r.persistAsync("save_session", func(ctx context.Context) error {
		return r.gateway.SaveSession(ctx, record)
	})
	r.emitChange(snap)
	return nil
}

func (r *Runtime) tickInterval(activity models.Activity) time.Duration {
	if r.opts.Pacing == constants.PacingFast {
		return r.opts.FastInterval
	}
	minutes := activity.DurationMinutes
	if minutes <= 0 {
		minutes = defaultActivityMinutes
	}
	return time.Duration(minutes) * time.Minute * time.Duration(r.opts.ProgressStep) / 100
}

func (r *Runtime) onTick(gen uint64) {
	r.mu.Lock()
	if gen != r.tickGen || r.phase != PhaseRunning {
		r.mu.Unlock()
		return
	}

	r.progress += r.opts.ProgressStep
	if r.progress >= 100 {
		r.progress = 100
		r.stopTickerLocked()
		r.mu.Unlock()
		r.Complete()
		return
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emitChange(snap)
}

// Complete marks the running session as finished and schedules finalization.
// It returns false when there is nothing to complete or completion already began.
func (r *Runtime) Complete() bool {
	r.mu.Lock()
	if r.phase != PhaseRunning || r.completing {
		r.mu.Unlock()
		return false
	}
	r.completing = true

	r.stopTickerLocked()
	r.progress = 100
	r.phase = PhaseCompleting
	gen := r.sessionGen
	title := r.active.activity.Title
	r.delay = r.opts.Clock.After(r.opts.CompletionDelay, func() { r.finalize(gen) })
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emitNotice(NoticeSuccess, fmt.Sprintf("Well done! You completed %s.", title))
	r.emitChange(snap)
	return true
}

func (r *Runtime) finalize(gen uint64) {
	r.mu.Lock()
	if gen != r.sessionGen || r.phase != PhaseCompleting || r.finalizing {
		r.mu.Unlock()
		return
	}
	r.finalizing = true

	id := r.active.id
	activity, ok := r.catalog.Activity(id)
	if id == "" || !ok {
		r.completing = false
		r.finalizing = false
		r.active = activeSession{}
		r.progress = 0
		r.phase = r.idlePhaseLocked()
		snap := r.snapshotLocked()
		r.mu.Unlock()

		logger.Warn("Completion aborted: activity does not resolve", "activity_id", id)
		r.emitNotice(NoticeWarning, "This session could not be recorded because the activity is unknown. Please try again.")
		r.emitChange(snap)
		return
	}
	r.active.activity = activity
	record := r.recordLocked(true, 100)

	// Plan and counters change under the same lock that claims finalization;
	// a later Cancel only clears the active session.
	moved := r.remaining.MoveTo(id, r.completedToday)
	if moved {
		r.sessionsToday++
	}
	allDone := r.remaining.Len() == 0
	if allDone && moved {
		r.plan.DaysCompleted++
	}
	r.plan.Day = r.day
	if allDone {
		r.phase = PhaseAllDone
	} else {
		r.phase = PhaseIdle
	}
	left := r.remaining.Len()
	assessmentID := r.assessmentID
	plan := r.planLocked()
	r.delay = r.opts.Clock.After(r.opts.ResetDelay, func() { r.reset(gen) })
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.persistAsync("save_session", func(ctx context.Context) error {
		return r.gateway.SaveSession(ctx, record)
	})
	logger.Info("Session completed", "activity_id", id, "remaining", left)
	if assessmentID != "" {
		r.persistAsync("update_plan", func(ctx context.Context) error {
			return r.gateway.UpdatePlan(ctx, assessmentID, plan)
		})
	}

	if allDone {
		r.emitNotice(NoticeSuccess, "You've finished every activity for today. Great work!")
	} else {
		r.emitNotice(NoticeInfo, fmt.Sprintf("%d %s remaining today", left, pluralize(left, "activity", "activities")))
	}
	r.emitChange(snap)
}

func (r *Runtime) reset(gen uint64) {
	r.mu.Lock()
	if gen != r.sessionGen {
		r.mu.Unlock()
		return
	}
	r.active = activeSession{}
	r.progress = 0
	r.completing = false
	r.finalizing = false
	r.delay = nil
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.emitChange(snap)
}

// Cancel stops the running session, if any, and clears the durable activity
// reference so no pending callback can touch state afterward.
func (r *Runtime) Cancel() {
	r.mu.Lock()
	if r.active.id == "" && !r.busyLocked() {
		r.mu.Unlock()
		return
	}

	wasRunning := r.phase == PhaseRunning
	var record models.SessionRecord
	if wasRunning {
		record = r.recordLocked(false, r.progress)
		record.Notes = "cancelled"
	}

	r.stopTimersLocked()
	r.sessionGen++
	r.active = activeSession{}
	r.progress = 0
	r.completing = false
	r.finalizing = false
	r.phase = r.idlePhaseLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if wasRunning {
		logger.Info("Session cancelled", "activity_id", record.ActivityID, "progress", record.Progress)
		r.persistAsync("save_session", func(ctx context.Context) error {
			return r.gateway.SaveSession(ctx, record)
		})
	}
	r.emitChange(snap)
}

// Wait blocks until in-flight background persistence calls have returned
func (r *Runtime) Wait() {
	r.wg.Wait()
}

// Close cancels any session and waits for background persistence
func (r *Runtime) Close() {
	r.Cancel()
	r.Wait()
}

// Snapshot returns the current state
func (r *Runtime) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollIdleDayLocked()
	return r.snapshotLocked()
}

// Available returns plan activities that are neither completed today nor active
func (r *Runtime) Available() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollIdleDayLocked()
	return r.remaining.Except(r.active.id, r.completedToday)
}

func (r *Runtime) busyLocked() bool {
	return r.phase == PhaseRunning || r.phase == PhaseCompleting || r.completing || r.finalizing
}

func (r *Runtime) idlePhaseLocked() Phase {
	if r.remaining.Len() == 0 && r.completedToday.Len() > 0 {
		return PhaseAllDone
	}
	return PhaseIdle
}

// rollDayLocked restores the full daily activity list once the calendar day changes
func (r *Runtime) rollDayLocked() {
	today := r.opts.Now().Format(constants.DateFormat)
	if today == r.day {
		return
	}
	logger.Debug("New day, restoring daily activities", "day", today)
	r.remaining = NewActivitySet(r.plan.ForDay(today)...)
	r.completedToday = NewActivitySet()
	r.sessionsToday = 0
	r.day = today
	r.phase = r.idlePhaseLocked()
}

// rollIdleDayLocked rolls the day over unless a session is in progress; a
// session that spans midnight is finished against the day it started on
func (r *Runtime) rollIdleDayLocked() {
	if !r.busyLocked() {
		r.rollDayLocked()
	}
}

func (r *Runtime) stopTickerLocked() {
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	r.tickGen++
}

func (r *Runtime) stopTimersLocked() {
	r.stopTickerLocked()
	if r.delay != nil {
		r.delay.Stop()
		r.delay = nil
	}
}

func (r *Runtime) planLocked() models.TherapyPlan {
	plan := r.plan.Clone()
	plan.AssessmentID = r.assessmentID
	plan.Activities = r.remaining.IDs()
	return plan
}

func (r *Runtime) recordLocked(completed bool, progress int) models.SessionRecord {
	return models.SessionRecord{
		ID:              uuid.New().String(),
		AssessmentID:    r.assessmentID,
		ActivityID:      r.active.id,
		ActivityName:    r.active.activity.Title,
		DurationMinutes: r.active.activity.DurationMinutes,
		Completed:       completed,
		Progress:        progress,
		CreatedAt:       r.opts.Now(),
	}
}

func (r *Runtime) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:            r.phase,
		ActiveActivityID: r.active.id,
		Progress:         r.progress,
		Available:        r.remaining.Except(r.active.id, r.completedToday),
		CompletedToday:   r.completedToday.IDs(),
		SessionsToday:    r.sessionsToday,
		AssessmentID:     r.assessmentID,
		Plan:             r.planLocked(),
	}
}

func (r *Runtime) persist(op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.PersistTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.Warn("Persistence call failed", "op", op, "error", err)
		return errors.NewPersistenceError(op, err)
	}
	return nil
}

func (r *Runtime) persistAsync(op string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.persist(op, fn); err != nil {
			r.emitNotice(NoticeWarning, "Couldn't sync with the server. Your progress is kept on this device.")
		}
	}()
}

func (r *Runtime) emitChange(s Snapshot) {
	if r.opts.OnChange != nil {
		r.opts.OnChange(s)
	}
}

func (r *Runtime) emitNotice(level NoticeLevel, text string) {
	if r.opts.OnNotice != nil {
		r.opts.OnNotice(NewNotice(level, text))
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
