package domain

import (
	"fmt"
	"time"
)

// NoSelection marks a question the user has not answered yet.
const NoSelection = -1

// Question models an MCQ question with exactly one correct choice.
type Question struct {
	Text         string   `json:"text" yaml:"text"`
	Choices      []string `json:"choices" yaml:"choices"`
	CorrectIndex int      `json:"correctIndex" yaml:"correctIndex"`
	Explanation  string   `json:"explanation" yaml:"explanation"`
}

// Validate checks the question has at least two choices and a valid correct index.
func (q Question) Validate() error {
	if len(q.Choices) < 2 {
		return fmt.Errorf("%w: question %q needs at least two choices", ErrInvalidBank, q.Text)
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Choices) {
		return fmt.Errorf("%w: question %q has correct index %d out of range", ErrInvalidBank, q.Text, q.CorrectIndex)
	}
	return nil
}

// HasChoice reports whether i indexes one of the question's choices.
func (q Question) HasChoice(i int) bool {
	return i >= 0 && i < len(q.Choices)
}

// Bank is an ordered, immutable sequence of questions. Order defines both
// presentation order and scoring order.
type Bank struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions in the bank.
func (b Bank) Len() int { return len(b.Questions) }

// Validate checks the bank is non-empty and every question is well-formed.
func (b Bank) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: bank id is required", ErrInvalidBank)
	}
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: bank %q has no questions", ErrInvalidBank, b.ID)
	}
	for _, q := range b.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Phase is the quiz state machine's current state.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseCompleted
)

var phaseNames = map[Phase]string{
	PhaseNotStarted: "not_started",
	PhaseInProgress: "in_progress",
	PhaseCompleted:  "completed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// State is the mutable state of one quiz session. Selections always has one
// entry per bank question; NoSelection marks an absent answer.
type State struct {
	Phase        Phase      `json:"phase"`
	CurrentIndex int        `json:"currentIndex"`
	Selections   []int      `json:"selections"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// NewState returns a fresh NotStarted state for a bank of n questions.
func NewState(n int) State {
	selections := make([]int, n)
	for i := range selections {
		selections[i] = NoSelection
	}
	return State{Phase: PhaseNotStarted, Selections: selections}
}

// Clone returns a deep copy so callers cannot alias the selections slice.
func (s State) Clone() State {
	out := s
	out.Selections = append([]int(nil), s.Selections...)
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// QuestionView is the renderable part of a question; it never exposes the answer.
type QuestionView struct {
	Text    string   `json:"text"`
	Choices []string `json:"choices"`
}

// Snapshot is a render-ready view of a session for presentation layers.
type Snapshot struct {
	SessionID    string        `json:"sessionId"`
	BankID       string        `json:"bankId"`
	Phase        Phase         `json:"phase"`
	CurrentIndex int           `json:"currentIndex"`
	Total        int           `json:"total"`
	Progress     string        `json:"progress,omitempty"`
	Question     *QuestionView `json:"question,omitempty"`
	Selection    int           `json:"selection"`
	CanAdvance   bool          `json:"canAdvance"`
	IsLast       bool          `json:"isLast"`
	Score        int           `json:"score"`
	Summary      string        `json:"summary,omitempty"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
}

// Reveal carries the correct answer for the current question so the
// presentation layer can highlight it before advancing.
type Reveal struct {
	CurrentIndex int  `json:"currentIndex"`
	CorrectIndex int  `json:"correctIndex"`
	Selection    int  `json:"selection"`
	Correct      bool `json:"correct"`
}

// ReportEntry is the per-question breakdown line of a report.
type ReportEntry struct {
	Number        int    `json:"number"`
	Question      string `json:"question"`
	Correct       bool   `json:"correct"`
	YourAnswer    string `json:"yourAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// Report is the formatted result of a quiz session.
type Report struct {
	Score       int           `json:"score"`
	Total       int           `json:"total"`
	Summary     string        `json:"summary"`
	CompletedAt string        `json:"completedAt"`
	Entries     []ReportEntry `json:"entries"`
}

// Recipient identifies who a report is sent on behalf of.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionRecord is the persisted form of a session.
type SessionRecord struct {
	ID        string    `json:"id"`
	BankID    string    `json:"bankId"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}
