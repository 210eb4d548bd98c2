package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBankValidate(t *testing.T) {
	bank := Bank{
		ID: "b1",
		Questions: []Question{
			{Text: "ok", Choices: []string{"a", "b"}, CorrectIndex: 1},
		},
	}
	if err := bank.Validate(); err != nil {
		t.Fatalf("expected valid bank, got %v", err)
	}

	bank.Questions = append(bank.Questions, Question{Text: "bad", Choices: []string{"a", "b"}, CorrectIndex: 2})
	if err := bank.Validate(); !errors.Is(err, ErrInvalidBank) || !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid bank error, got %v", err)
	}

	single := Bank{ID: "b2", Questions: []Question{{Text: "one", Choices: []string{"a"}}}}
	if err := single.Validate(); !errors.Is(err, ErrInvalidBank) {
		t.Fatalf("expected single-choice question to be rejected, got %v", err)
	}

	if err := (Bank{ID: "empty"}).Validate(); !errors.Is(err, ErrInvalidBank) {
		t.Fatalf("expected empty bank to be rejected, got %v", err)
	}
}

func TestNewStateHasNoSelections(t *testing.T) {
	st := NewState(3)
	if st.Phase != PhaseNotStarted || st.CurrentIndex != 0 || st.CompletedAt != nil {
		t.Fatalf("unexpected fresh state %+v", st)
	}
	if len(st.Selections) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(st.Selections))
	}
	for i, sel := range st.Selections {
		if sel != NoSelection {
			t.Fatalf("selection %d should be absent, got %d", i, sel)
		}
	}
}

func TestStateCloneDoesNotAlias(t *testing.T) {
	st := NewState(2)
	clone := st.Clone()
	clone.Selections[0] = 1
	if st.Selections[0] != NoSelection {
		t.Fatalf("clone mutated original selections")
	}
}

func TestPhaseJSON(t *testing.T) {
	data, err := json.Marshal(State{Phase: PhaseCompleted, Selections: []int{0}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Phase != PhaseCompleted {
		t.Fatalf("expected completed phase, got %v", decoded.Phase)
	}

	var p Phase
	if err := p.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatalf("expected error for unknown phase")
	}
}

func TestErrorKind(t *testing.T) {
	cases := map[error]string{
		ErrNoSelection:      "precondition",
		ErrAlreadyStarted:   "precondition",
		ErrInvalidEmail:     "validation",
		ErrChoiceOutOfRange: "validation",
		ErrSessionNotFound:  "not_found",
		ErrBankNotFound:     "not_found",
		ErrDispatch:         "dispatch",
		errors.New("boom"):  "internal",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
