package plans

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/solace/internal/cli"
	"github.com/julianstephens/solace/internal/errors"
	"github.com/julianstephens/solace/internal/models"
	"github.com/julianstephens/solace/internal/tui"
)

// AssessCmd runs the intake interview. With --answer flags for every question
// it scores non-interactively; otherwise it opens the interview screen.
type AssessCmd struct {
	Emotion   string            `help:"Detected emotion as emotion:confidence, e.g. sad:0.8."`
	Answer    map[string]string `help:"Answer as question=value. Repeat for each question." short:"a"`
	AskMood   bool              `help:"Ask how you feel before the interview."`
	Questions bool              `help:"List question ids and their allowed values."`
}

func (c *AssessCmd) Run(ctx *cli.Context) error {
	if c.Questions {
		printQuestions(ctx.Catalog.Questions)
		return nil
	}

	emotion, err := cli.ParseEmotion(c.Emotion)
	if err != nil {
		return err
	}
	if emotion == nil && c.AskMood {
		emotion, err = promptEmotion()
		if err != nil {
			return err
		}
	}

	if len(c.Answer) == 0 {
		return ctx.RunTUI(tui.Deps{Emotion: emotion, Retake: true})
	}

	answers, err := collectAnswers(ctx.Catalog.Questions, c.Answer)
	if err != nil {
		return err
	}

	stored, err := ctx.NewService().Onboard(context.Background(), answers, emotion)
	if err != nil && !errors.IsPersistence(err) {
		return err
	}
	printAssessment(ctx, stored)
	if err != nil {
		return fmt.Errorf("assessment could not be saved: %w", err)
	}
	return nil
}

// collectAnswers checks that every question has exactly one valid answer
func collectAnswers(questions []models.Question, raw map[string]string) (models.AnswerSet, error) {
	known := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		known[q.ID] = q
	}
	for id := range raw {
		if _, ok := known[id]; !ok {
			return nil, &errors.ValidationError{Field: "question", Value: id, Reason: "unknown question id"}
		}
	}

	answers := make(models.AnswerSet, len(questions))
	for _, q := range questions {
		v, ok := raw[q.ID]
		if !ok || strings.TrimSpace(v) == "" {
			return nil, &errors.ValidationError{Field: "answer", Value: q.ID, Reason: "missing answer"}
		}
		v = strings.TrimSpace(v)
		if !q.HasOption(v) {
			return nil, &errors.ValidationError{Field: q.ID, Value: v, Reason: "not one of " + optionValues(q)}
		}
		answers[q.ID] = v
	}
	return answers, nil
}

func optionValues(q models.Question) string {
	values := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		values = append(values, o.Value)
	}
	return strings.Join(values, ", ")
}

func printQuestions(questions []models.Question) {
	for _, q := range questions {
		fmt.Printf("%s: %s\n", q.ID, q.Prompt)
		for _, o := range q.Options {
			fmt.Printf("  %-14s %s\n", o.Value, o.Label)
		}
	}
}

func printAssessment(ctx *cli.Context, stored models.StoredAssessment) {
	a := stored.Assessment
	fmt.Printf("Severity: %s (score %d)\n", a.Severity, a.Score)
	if len(a.DetectedDisorders) > 0 {
		fmt.Printf("Detected: %s\n", strings.Join(a.DetectedDisorders, ", "))
	}
	if len(a.RiskFactors) > 0 {
		fmt.Printf("Risk factors: %s\n", strings.Join(a.RiskFactors, ", "))
	}
	fmt.Println("\nRecommendations:")
	for _, r := range a.Recommendations {
		fmt.Printf("  - %s\n", r)
	}
	fmt.Printf("\nPlan (%s):\n", stored.Plan.DurationLabel)
	for _, g := range stored.Plan.Goals {
		fmt.Printf("  goal: %s\n", g)
	}
	for _, id := range stored.Plan.Activities {
		fmt.Printf("  activity: %s\n", ctx.ActivityTitle(id))
	}
}

var moodOptions = []huh.Option[string]{
	huh.NewOption("I'd rather not say", ""),
	huh.NewOption("Happy", "happy"),
	huh.NewOption("Calm", "neutral"),
	huh.NewOption("Sad", "sad"),
	huh.NewOption("Angry", "angry"),
	huh.NewOption("Anxious", "fear"),
}

var certaintyOptions = []huh.Option[string]{
	huh.NewOption("Very sure", "0.9"),
	huh.NewOption("Fairly sure", "0.6"),
	huh.NewOption("Not sure", "0.4"),
}

func promptEmotion() (*models.EmotionSignal, error) {
	var mood, certainty string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How are you feeling right now?").
				Options(moodOptions...).
				Value(&mood),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How sure are you about that?").
				Options(certaintyOptions...).
				Value(&certainty),
		).WithHideFunc(func() bool { return mood == "" }),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("mood prompt cancelled: %w", err)
	}
	if mood == "" {
		return nil, nil
	}
	confidence, err := strconv.ParseFloat(certainty, 64)
	if err != nil {
		return nil, err
	}
	return &models.EmotionSignal{Emotion: mood, Confidence: confidence}, nil
}
