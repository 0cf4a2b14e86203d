// Package scoring turns interview answers and an optional emotion signal into
// a PsychologicalAssessment. It is a deterministic heuristic, not a clinical instrument.
package scoring

import (
	"github.com/julianstephens/solace/internal/models"
)

const (
	SevereThreshold   = 8
	ModerateThreshold = 5

	strongEmotionConfidence = 0.7
	weakEmotionConfidence   = 0.5
)

type rule struct {
	delta      int
	riskFactor string
	disorder   string
}

// rules maps question id -> answer value -> effect
var rules = map[string]map[string]rule{
	"mood_frequency": {
		"constantly":   {delta: 3, riskFactor: "frequent mood changes"},
		"frequently":   {delta: 2},
		"occasionally": {delta: 1},
	},
	"sleep_patterns": {
		"severe": {delta: 3, riskFactor: "sleep disturbances"},
		"poor":   {delta: 2},
	},
	"anxiety_levels": {
		"severe":   {delta: 3, riskFactor: "severe anxiety", disorder: models.DisorderAnxiety},
		"moderate": {delta: 2},
	},
	"social_interaction": {
		"avoidant": {delta: 2, riskFactor: "social isolation"},
	},
	"concentration": {
		"severe": {delta: 2, riskFactor: "concentration issues"},
	},
	"energy_levels": {
		"very_low": {delta: 2, riskFactor: "low energy"},
	},
	"appetite_changes": {
		"irregular": {delta: 1, riskFactor: "appetite changes"},
	},
}

var recommendations = map[models.Severity][]string{
	models.SeveritySevere: {
		"Reach out to a mental health professional or crisis line as soon as possible",
		"Let someone you trust know how you are feeling today",
		"Follow your daily therapy activities and avoid being alone during difficult moments",
	},
	models.SeverityModerate: {
		"Schedule regular sessions with a therapist or counsellor",
		"Practice your therapy activities every day",
		"Track your mood and sleep to share with your care provider",
	},
	models.SeverityMild: {
		"Use self-help activities such as mindfulness and journaling",
		"Keep a regular sleep and exercise routine",
		"Check in with yourself weekly and retake the assessment if things change",
	},
}

type scorer struct {
	score      int
	risks      []string
	disorders  []string
	seenDisord map[string]bool
}

func (s *scorer) apply(r rule) {
	s.score += r.delta
	if r.riskFactor != "" {
		s.risks = append(s.risks, r.riskFactor)
	}
	if r.disorder != "" && !s.seenDisord[r.disorder] {
		s.seenDisord[r.disorder] = true
		s.disorders = append(s.disorders, r.disorder)
	}
}

// Compute scores answers in question order, then applies the emotion signal.
// emotion may be nil. The result depends only on its inputs.
func Compute(questions []models.Question, answers models.AnswerSet, emotion *models.EmotionSignal) models.Assessment {
	s := &scorer{seenDisord: make(map[string]bool)}

	for _, q := range questions {
		value, ok := answers[q.ID]
		if !ok {
			continue
		}
		if r, ok := rules[q.ID][value]; ok {
			s.apply(r)
		}
	}

	if emotion != nil {
		if emotion.Emotion == "sad" && emotion.Confidence > strongEmotionConfidence {
			s.apply(rule{delta: 2, disorder: models.DisorderDepression})
		}
		if emotion.Emotion == "angry" && emotion.Confidence > strongEmotionConfidence {
			s.apply(rule{delta: 1, riskFactor: "anger issues"})
		}
		if emotion.Confidence < weakEmotionConfidence {
			s.apply(rule{delta: 1, riskFactor: "emotional instability"})
		}
	}

	severity := SeverityFor(s.score)
	return models.Assessment{
		Score:             s.score,
		Severity:          severity,
		RiskFactors:       nonNil(s.risks),
		DetectedDisorders: nonNil(s.disorders),
		Recommendations:   append([]string(nil), recommendations[severity]...),
	}
}

// SeverityFor maps a score to its severity tier
func SeverityFor(score int) models.Severity {
	switch {
	case score >= SevereThreshold:
		return models.SeveritySevere
	case score >= ModerateThreshold:
		return models.SeverityModerate
	default:
		return models.SeverityMild
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
