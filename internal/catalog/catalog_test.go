package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	if len(c.Questions) != 7 {
		t.Errorf("expected 7 questions, got %d", len(c.Questions))
	}
	for _, id := range []string{"breathing", "mindfulness", "progressive_relaxation", "cbt", "gratitude", "music_therapy"} {
		if _, ok := c.Activity(id); !ok {
			t.Errorf("expected activity %q in default catalog", id)
		}
	}
	if _, ok := c.Activity("skydiving"); ok {
		t.Error("unexpected activity resolved")
	}
	if d, ok := c.Disorder("anxiety"); !ok || d.Name == "" {
		t.Error("expected anxiety profile")
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no questions", "activities: []", "at least one question"},
		{"duplicate question", `
questions:
  - {id: a, prompt: A, options: [{value: x, label: X}]}
  - {id: a, prompt: B, options: [{value: x, label: X}]}`, "duplicate question"},
		{"question without options", `
questions:
  - {id: a, prompt: A}`, "has no options"},
		{"activity without duration", `
questions:
  - {id: a, prompt: A, options: [{value: x, label: X}]}
activities:
  - {id: breathing, title: Breathing}`, "positive duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
questions:
  - {id: mood_frequency, prompt: Mood?, options: [{value: rarely, label: Rarely}]}
activities:
  - {id: walk, title: Walk, duration_minutes: 10}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if a, ok := c.Activity("walk"); !ok || a.DurationMinutes != 10 {
		t.Errorf("expected walk activity, got %+v", a)
	}

	if c, err := Load(""); err != nil || c != Default() {
		t.Error("empty path should return the default catalog")
	}
}
