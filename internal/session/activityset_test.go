package session

import (
	"reflect"
	"testing"
)

func TestNewActivitySetDeduplicates(t *testing.T) {
	s := NewActivitySet("breathing", "cbt", "breathing", "gratitude")
	if !reflect.DeepEqual(s.IDs(), []string{"breathing", "cbt", "gratitude"}) {
		t.Errorf("IDs() = %v", s.IDs())
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestMoveTo(t *testing.T) {
	plan := NewActivitySet("breathing", "cbt")
	done := NewActivitySet()

	if !plan.MoveTo("cbt", done) {
		t.Fatal("MoveTo returned false for present id")
	}
	if plan.Contains("cbt") || !done.Contains("cbt") {
		t.Errorf("cbt not moved: plan=%v done=%v", plan.IDs(), done.IDs())
	}

	if plan.MoveTo("cbt", done) {
		t.Error("second MoveTo of the same id should report false")
	}
	if done.Len() != 1 || plan.Len() != 1 {
		t.Errorf("sizes changed on repeated move: plan=%d done=%d", plan.Len(), done.Len())
	}
}

func TestExcept(t *testing.T) {
	plan := NewActivitySet("a", "b", "c", "d")
	done := NewActivitySet("b")

	got := plan.Except("c", done, nil)
	if !reflect.DeepEqual(got, []string{"a", "d"}) {
		t.Errorf("Except() = %v, want [a d]", got)
	}
}

func TestIDsReturnsCopy(t *testing.T) {
	s := NewActivitySet("a", "b")
	ids := s.IDs()
	ids[0] = "z"
	if s.IDs()[0] != "a" {
		t.Error("IDs() exposes internal storage")
	}
}
