package models

import "time"

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Disorder keys
const (
	DisorderAnxiety    = "anxiety"
	DisorderDepression = "depression"
)

type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []Option `json:"options" yaml:"options"`
}

// HasOption reports whether value is one of the question's option values
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// AnswerSet maps question id to the selected option value
type AnswerSet map[string]string

// Clone returns an independent copy of the answer set
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// EmotionSignal is supplied by an external analysis step. Confidence is in [0,1].
type EmotionSignal struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

type Assessment struct {
	Score             int      `json:"score"`
	Severity          Severity `json:"severity"`
	RiskFactors       []string `json:"risk_factors"`
	DetectedDisorders []string `json:"detected_disorders"`
	Recommendations   []string `json:"recommendations"`
}

// HasDisorder reports whether key is among the detected disorders
func (a Assessment) HasDisorder(key string) bool {
	for _, d := range a.DetectedDisorders {
		if d == key {
			return true
		}
	}
	return false
}

type DisorderProfile struct {
	Key             string   `json:"key" yaml:"key"`
	Name            string   `json:"name" yaml:"name"`
	Symptoms        []string `json:"symptoms" yaml:"symptoms"`
	Severity        Severity `json:"severity" yaml:"severity"`
	Description     string   `json:"description" yaml:"description"`
	TherapyApproach string   `json:"therapy_approach" yaml:"therapy_approach"`
}

// StoredAssessment is the persisted form of a completed interview and the plan derived from it
type StoredAssessment struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Answers    AnswerSet      `json:"answers"`
	Emotion    *EmotionSignal `json:"emotion,omitempty"`
	Assessment Assessment     `json:"assessment"`
	Plan       TherapyPlan    `json:"therapy_plan"`
}
