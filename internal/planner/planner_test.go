package planner

import (
	"reflect"
	"testing"

	"github.com/julianstephens/solace/internal/constants"
	"github.com/julianstephens/solace/internal/models"
)

func TestGenerateActivities(t *testing.T) {
	tests := []struct {
		name       string
		assessment models.Assessment
		want       []string
	}{
		{
			name:       "anxiety only",
			assessment: models.Assessment{Severity: models.SeveritySevere, DetectedDisorders: []string{"anxiety"}},
			want:       []string{"breathing", "mindfulness", "progressive_relaxation"},
		},
		{
			name:       "depression only",
			assessment: models.Assessment{Severity: models.SeverityModerate, DetectedDisorders: []string{"depression"}},
			want:       []string{"cbt", "gratitude", "music_therapy"},
		},
		{
			name:       "both disorders",
			assessment: models.Assessment{Severity: models.SeveritySevere, DetectedDisorders: []string{"depression", "anxiety"}},
			want:       []string{"breathing", "mindfulness", "progressive_relaxation", "cbt", "gratitude", "music_therapy"},
		},
		{
			name:       "severe without disorders",
			assessment: models.Assessment{Severity: models.SeveritySevere},
			want:       []string{"breathing", "mindfulness", "progressive_relaxation", "cbt"},
		},
		{
			name:       "moderate without disorders",
			assessment: models.Assessment{Severity: models.SeverityModerate},
			want:       []string{"mindfulness", "breathing", "gratitude"},
		},
		{
			name:       "mild",
			assessment: models.Assessment{Severity: models.SeverityMild},
			want:       []string{"mindfulness", "breathing", "gratitude"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Generate(tt.assessment)
			if !reflect.DeepEqual(plan.Activities, tt.want) {
				t.Errorf("Activities = %v, want %v", plan.Activities, tt.want)
			}
		})
	}
}

func TestGenerateGoals(t *testing.T) {
	plan := Generate(models.Assessment{Severity: models.SeveritySevere, DetectedDisorders: []string{"anxiety"}})
	want := append(append([]string{}, anxietyGoals...), crisisGoals...)
	if !reflect.DeepEqual(plan.Goals, want) {
		t.Errorf("Goals = %v, want %v", plan.Goals, want)
	}

	plan = Generate(models.Assessment{Severity: models.SeverityMild})
	if !reflect.DeepEqual(plan.Goals, defaultGoals) {
		t.Errorf("Goals = %v, want defaults", plan.Goals)
	}
}

func TestGenerateNeverEmpty(t *testing.T) {
	severities := []models.Severity{models.SeverityMild, models.SeverityModerate, models.SeveritySevere, ""}
	disorderSets := [][]string{nil, {"anxiety"}, {"depression"}, {"anxiety", "depression"}, {"unknown"}}

	for _, sev := range severities {
		for _, ds := range disorderSets {
			plan := Generate(models.Assessment{Severity: sev, DetectedDisorders: ds})
			if len(plan.Goals) == 0 {
				t.Errorf("empty goals for severity=%q disorders=%v", sev, ds)
			}
			if len(plan.Activities) == 0 {
				t.Errorf("empty activities for severity=%q disorders=%v", sev, ds)
			}
			if len(plan.Monitoring) != 4 {
				t.Errorf("expected 4 monitoring items, got %d", len(plan.Monitoring))
			}
			if plan.DurationLabel != constants.PlanDurationLabel {
				t.Errorf("DurationLabel = %q", plan.DurationLabel)
			}
			seen := map[string]bool{}
			for _, id := range plan.Activities {
				if seen[id] {
					t.Errorf("duplicate activity %q for severity=%q disorders=%v", id, sev, ds)
				}
				seen[id] = true
			}
		}
	}
}

func TestGenerateDoesNotAliasPackageSlices(t *testing.T) {
	plan := Generate(models.Assessment{Severity: models.SeverityMild})
	plan.Activities[0] = "mutated"
	plan.Goals[0] = "mutated"

	again := Generate(models.Assessment{Severity: models.SeverityMild})
	if again.Activities[0] != "mindfulness" || again.Goals[0] != defaultGoals[0] {
		t.Error("generated plan shares storage with package defaults")
	}
}
