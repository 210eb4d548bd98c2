package app

import (
	"fmt"
	"time"

	"quiz-report-service/internal/domain"
)

// Machine drives the NotStarted -> InProgress -> Completed -> NotStarted
// lifecycle of a quiz over a fixed bank. It holds no session state: every
// operation mutates the State it is given, so one Machine serves any number
// of sessions over the same bank.
type Machine struct {
	bank domain.Bank
	now  func() time.Time
}

func NewMachine(bank domain.Bank) *Machine {
	return NewMachineWithClock(bank, time.Now)
}

// NewMachineWithClock allows deterministic completion timestamps in tests.
func NewMachineWithClock(bank domain.Bank, now func() time.Time) *Machine {
	return &Machine{bank: bank, now: now}
}

// Bank returns the question bank the machine runs over.
func (m *Machine) Bank() domain.Bank { return m.bank }

// NewState returns the initial NotStarted state for this bank.
func (m *Machine) NewState() domain.State {
	return domain.NewState(m.bank.Len())
}

// Start moves a NotStarted session into InProgress with a fresh state.
// Calling it in any other phase leaves the state untouched.
func (m *Machine) Start(st *domain.State) error {
	if st.Phase != domain.PhaseNotStarted {
		return domain.ErrAlreadyStarted
	}
	*st = m.NewState()
	st.Phase = domain.PhaseInProgress
	return nil
}

// Select records choice for the current question, replacing any earlier pick.
func (m *Machine) Select(st *domain.State, choice int) error {
	if st.Phase != domain.PhaseInProgress {
		return domain.ErrNotInProgress
	}
	q := m.bank.Questions[st.CurrentIndex]
	if !q.HasChoice(choice) {
		return fmt.Errorf("%w: %d not in [0, %d)", domain.ErrChoiceOutOfRange, choice, len(q.Choices))
	}
	st.Selections[st.CurrentIndex] = choice
	return nil
}

// Reveal reports the correct answer for the current question. It has the same
// precondition as Advance and never mutates the state.
func (m *Machine) Reveal(st *domain.State) (domain.Reveal, error) {
	if err := m.checkAdvance(st); err != nil {
		return domain.Reveal{}, err
	}
	q := m.bank.Questions[st.CurrentIndex]
	sel := st.Selections[st.CurrentIndex]
	return domain.Reveal{
		CurrentIndex: st.CurrentIndex,
		CorrectIndex: q.CorrectIndex,
		Selection:    sel,
		Correct:      sel == q.CorrectIndex,
	}, nil
}

// Advance moves to the next question, or completes the quiz on the last one.
// Without a selection for the current question the state is left unchanged.
func (m *Machine) Advance(st *domain.State) error {
	if err := m.checkAdvance(st); err != nil {
		return err
	}
	if st.CurrentIndex < m.bank.Len()-1 {
		st.CurrentIndex++
		return nil
	}
	completedAt := m.now()
	st.CompletedAt = &completedAt
	st.Phase = domain.PhaseCompleted
	return nil
}

// Reset discards all progress and returns the session to NotStarted. It is
// accepted from any phase.
func (m *Machine) Reset(st *domain.State) {
	*st = m.NewState()
}

// Score returns the live score for st.
func (m *Machine) Score(st domain.State) int {
	return ComputeScore(m.bank, st.Selections)
}

// Report formats the completed session.
func (m *Machine) Report(st domain.State) (domain.Report, error) {
	if st.Phase != domain.PhaseCompleted {
		return domain.Report{}, domain.ErrNotCompleted
	}
	var completedAt time.Time
	if st.CompletedAt != nil {
		completedAt = *st.CompletedAt
	}
	return FormatReport(m.bank, st.Selections, m.Score(st), completedAt), nil
}

// Snapshot renders st for a presentation layer.
func (m *Machine) Snapshot(st domain.State) domain.Snapshot {
	total := m.bank.Len()
	snap := domain.Snapshot{
		BankID:       m.bank.ID,
		Phase:        st.Phase,
		CurrentIndex: st.CurrentIndex,
		Total:        total,
		Selection:    domain.NoSelection,
		Score:        m.Score(st),
	}
	switch st.Phase {
	case domain.PhaseInProgress:
		q := m.bank.Questions[st.CurrentIndex]
		snap.Progress = fmt.Sprintf("Question %d / %d", st.CurrentIndex+1, total)
		snap.Question = &domain.QuestionView{
			Text:    q.Text,
			Choices: append([]string(nil), q.Choices...),
		}
		snap.Selection = st.Selections[st.CurrentIndex]
		snap.CanAdvance = snap.Selection != domain.NoSelection
		snap.IsLast = st.CurrentIndex == total-1
	case domain.PhaseCompleted:
		snap.Summary = fmt.Sprintf("You scored %d / %d.", snap.Score, total)
		if st.CompletedAt != nil {
			at := *st.CompletedAt
			snap.CompletedAt = &at
		}
	}
	return snap
}

func (m *Machine) checkAdvance(st *domain.State) error {
	if st.Phase != domain.PhaseInProgress {
		return domain.ErrNotInProgress
	}
	if st.Selections[st.CurrentIndex] == domain.NoSelection {
		return domain.ErrNoSelection
	}
	return nil
}
