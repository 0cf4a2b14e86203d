package models

import "time"

type Activity struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	DurationMinutes int      `json:"duration_minutes" yaml:"duration_minutes"`
	Category        string   `json:"category" yaml:"category"`
	Instructions    []string `json:"instructions" yaml:"instructions"`
}

type TherapyPlan struct {
	AssessmentID  string   `json:"assessment_id,omitempty"`
	DurationLabel string   `json:"duration"`
	Goals         []string `json:"goals"`
	Activities    []string `json:"activities"` // remaining today
	Monitoring    []string `json:"monitoring"`
	DaysCompleted int      `json:"days_completed"`

	// DailyActivities is the full set restored at the start of each new day
	DailyActivities []string `json:"daily_activities,omitempty"`
	// Day is the YYYY-MM-DD date Activities was last narrowed on
	Day string `json:"day,omitempty"`
}

// Clone returns a deep copy of the plan
func (p TherapyPlan) Clone() TherapyPlan {
	out := p
	out.Goals = append([]string(nil), p.Goals...)
	out.Activities = append([]string(nil), p.Activities...)
	out.Monitoring = append([]string(nil), p.Monitoring...)
	out.DailyActivities = append([]string(nil), p.DailyActivities...)
	return out
}

// ForDay returns the activities due on day: the remaining list when the plan was
// last narrowed on that day, otherwise the full daily list.
func (p TherapyPlan) ForDay(day string) []string {
	if p.Day != day && len(p.DailyActivities) > 0 {
		return append([]string(nil), p.DailyActivities...)
	}
	return append([]string(nil), p.Activities...)
}

type SessionRecord struct {
	ID              string    `json:"id"`
	AssessmentID    string    `json:"assessment_id,omitempty"`
	ActivityID      string    `json:"activity_id"`
	ActivityName    string    `json:"activity_name"`
	DurationMinutes int       `json:"duration_minutes"`
	Completed       bool      `json:"completed"`
	Progress        int       `json:"progress"` // 0..100
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
