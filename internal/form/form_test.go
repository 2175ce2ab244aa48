package form

import (
	"testing"

	"github.com/unilater/galeaz/internal/domain"
)

func TestBuildMatchesCatalogKeySet(t *testing.T) {
	f := Build([]domain.QuestionDefinition{
		{ID: 3, Label: "lavoro", Type: domain.QuestionText, Required: true},
		{ID: 1, Label: "eta", Type: domain.QuestionNumber, Required: true},
		{ID: 2, Label: "sesso", Type: domain.QuestionChoice},
	})

	if f.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", f.Len())
	}
	fields := f.Fields()
	for i, want := range []string{"1", "2", "3"} {
		if fields[i].Key != want {
			t.Fatalf("expected ascending id order, got %q at %d", fields[i].Key, i)
		}
	}
	if _, ok := f.Get("4"); ok {
		t.Fatalf("unexpected field outside catalog")
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	f := Build(nil)
	if f.Len() != 0 {
		t.Fatalf("expected empty form, got %d fields", f.Len())
	}
	if !f.Valid() {
		t.Fatalf("empty form should be valid")
	}
}

func TestValidRequiredField(t *testing.T) {
	f := Build([]domain.QuestionDefinition{
		{ID: 1, Label: "eta", Type: domain.QuestionNumber, Required: true},
	})

	if f.Valid() {
		t.Fatalf("empty required field should invalidate the form")
	}
	if err := f.Set("1", "34"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !f.Valid() {
		t.Fatalf("expected valid form after filling required field")
	}
}

func TestValidNumberMinimum(t *testing.T) {
	f := Build([]domain.QuestionDefinition{
		{ID: 1, Label: "figli", Type: domain.QuestionNumber, Required: true},
	})

	cases := map[string]bool{
		"-1":  false,
		"abc": false,
		"0":   true,
		"2":   true,
	}
	for value, want := range cases {
		_ = f.Set("1", value)
		if got := f.Valid(); got != want {
			t.Fatalf("value %q: expected valid=%v, got %v", value, want, got)
		}
	}
}

func TestSetUnknownField(t *testing.T) {
	f := Build([]domain.QuestionDefinition{{ID: 1, Label: "eta", Type: domain.QuestionText}})
	if err := f.Set("9", "x"); err != domain.ErrUnknownField {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestPatchIgnoresUnknownKeys(t *testing.T) {
	f := Build([]domain.QuestionDefinition{
		{ID: 1, Label: "eta", Type: domain.QuestionNumber, Required: true},
		{ID: 2, Label: "sesso", Type: domain.QuestionText},
	})

	f.Patch(map[string]string{"1": "42", "99": "stale"})

	if v, _ := f.Get("1"); v != "42" {
		t.Fatalf("expected patched value, got %q", v)
	}
	if f.Len() != 2 {
		t.Fatalf("patch must not grow the field set, got %d", f.Len())
	}
	values := f.Values()
	if _, ok := values["99"]; ok {
		t.Fatalf("stale key leaked into form values")
	}
}
