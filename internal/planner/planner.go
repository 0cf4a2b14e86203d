// Package planner derives a TherapyPlan from a scored assessment.
package planner

import (
	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/models"
)

var (
	depressionGoals = []string{
		"Improve mood through daily positive activities",
		"Challenge negative thought patterns",
		"Re-establish a regular daily routine",
	}
	anxietyGoals = []string{
		"Reduce anxiety symptoms with relaxation techniques",
		"Recognise and manage anxiety triggers",
		"Build confidence in stressful situations",
	}
	crisisGoals = []string{
		"Connect with professional mental health support",
		"Create and follow a personal safety plan",
	}
	defaultGoals = []string{
		"Maintain emotional well-being",
		"Build healthy coping habits",
		"Improve stress management",
	}

	anxietyActivities    = []string{"breathing", "mindfulness", "progressive_relaxation"}
	depressionActivities = []string{"cbt", "gratitude", "music_therapy"}

	severityActivities = map[models.Severity][]string{
		models.SeveritySevere:   {"breathing", "mindfulness", "progressive_relaxation", "cbt"},
		models.SeverityModerate: {"mindfulness", "breathing", "gratitude"},
	}
	fallbackActivities = []string{"mindfulness", "breathing", "gratitude"}

	monitoring = []string{
		"Daily mood check-in",
		"Weekly progress review",
		"Sleep quality tracking",
		"Activity completion tracking",
	}
)

// Generate builds the plan for an assessment. Goals and activities are never empty.
func Generate(a models.Assessment) models.TherapyPlan {
	var goals []string
	if a.HasDisorder(models.DisorderDepression) {
		goals = append(goals, depressionGoals...)
	}
	if a.HasDisorder(models.DisorderAnxiety) {
		goals = append(goals, anxietyGoals...)
	}
	if a.Severity == models.SeveritySevere {
		goals = append(goals, crisisGoals...)
	}
	if len(goals) == 0 {
		goals = append(goals, defaultGoals...)
	}

	var activities []string
	if a.HasDisorder(models.DisorderAnxiety) {
		activities = appendUnique(activities, anxietyActivities...)
	}
	if a.HasDisorder(models.DisorderDepression) {
		activities = appendUnique(activities, depressionActivities...)
	}
	if len(activities) == 0 {
		if bySeverity, ok := severityActivities[a.Severity]; ok {
			activities = appendUnique(activities, bySeverity...)
		} else {
			activities = appendUnique(activities, fallbackActivities...)
		}
	}

	return models.TherapyPlan{
		DurationLabel: constants.PlanDurationLabel,
		Goals:         goals,
		Activities:    activities,
		Monitoring:    append([]string(nil), monitoring...),

		DailyActivities: append([]string(nil), activities...),
	}
}

// appendUnique keeps the plan's activity list free of duplicate ids
func appendUnique(dst []string, ids ...string) []string {
	for _, id := range ids {
		dup := false
		for _, existing := range dst {
			if existing == id {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, id)
		}
	}
	return dst
}
