package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quiz-report-service/internal/app"
	"quiz-report-service/internal/config"
	"quiz-report-service/internal/domain"
)

// NewPlayCmd runs a quiz in the terminal using the same services as the server.
func NewPlayCmd(configPath *string) *cobra.Command {
	var bankID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.close()
			if bankID == "" {
				bankID = svc.bankID
			}
			p := &player{
				quizzes:     svc.quizzes,
				reports:     svc.reports,
				in:          bufio.NewReader(cmd.InOrStdin()),
				out:         cmd.OutOrStdout(),
				revealDelay: config.Duration(cfg.Quiz.RevealDelay, 500*time.Millisecond),
			}
			return p.run(cmd.Context(), bankID)
		},
	}
	cmd.Flags().StringVar(&bankID, "bank", "", "bank id to play (defaults to quiz.bankId)")
	return cmd
}

// player is the terminal presentation layer: it renders snapshots and turns
// typed lines into state machine calls.
type player struct {
	quizzes     *app.QuizService
	reports     *app.ReportService
	in          *bufio.Reader
	out         io.Writer
	revealDelay time.Duration
}

func (p *player) run(ctx context.Context, bankID string) error {
	snap, err := p.quizzes.CreateSession(ctx, bankID)
	if err != nil {
		return err
	}
	id := snap.SessionID
	defer func() {
		if err := p.quizzes.Close(context.Background(), id); err != nil {
			log.Printf("close session %s: %v", id, err)
		}
	}()

	for {
		fmt.Fprintf(p.out, "%d questions. Press Enter to start.\n", snap.Total)
		if _, err := p.readLine(); err != nil {
			return eofIsDone(err)
		}
		if snap, err = p.quizzes.Start(ctx, id); err != nil {
			return err
		}

		for snap.Phase == domain.PhaseInProgress {
			if snap, err = p.ask(ctx, id, snap); err != nil {
				return eofIsDone(err)
			}
		}

		if err := p.showResult(ctx, id, snap); err != nil {
			return eofIsDone(err)
		}

		fmt.Fprint(p.out, "Play again? [y/N] ")
		line, err := p.readLine()
		if err != nil {
			return eofIsDone(err)
		}
		if !strings.EqualFold(line, "y") {
			return nil
		}
		if snap, err = p.quizzes.Reset(ctx, id); err != nil {
			return err
		}
	}
}

// ask renders the current question and loops until the user confirms an answer.
func (p *player) ask(ctx context.Context, id string, snap domain.Snapshot) (domain.Snapshot, error) {
	fmt.Fprintf(p.out, "\n%s    Score: %d\n%s\n", snap.Progress, snap.Score, snap.Question.Text)
	for i, choice := range snap.Question.Choices {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, choice)
	}

	for {
		action := "Next"
		if snap.IsLast {
			action = "Finish"
		}
		if snap.CanAdvance {
			fmt.Fprintf(p.out, "Answer [1-%d], or Enter for %s: ", len(snap.Question.Choices), action)
		} else {
			fmt.Fprintf(p.out, "Answer [1-%d]: ", len(snap.Question.Choices))
		}
		line, err := p.readLine()
		if err != nil {
			return snap, err
		}

		if line == "" {
			reveal, err := p.quizzes.Reveal(ctx, id)
			if errors.Is(err, domain.ErrNoSelection) {
				fmt.Fprintln(p.out, "Pick an answer first.")
				continue
			}
			if err != nil {
				return snap, err
			}
			mark := "✗"
			if reveal.Correct {
				mark = "✓"
			}
			fmt.Fprintf(p.out, "%s Correct answer: %s\n", mark, snap.Question.Choices[reveal.CorrectIndex])
			time.Sleep(p.revealDelay)
			return p.quizzes.Advance(ctx, id)
		}

		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(p.out, "Type the number of your answer.")
			continue
		}
		next, err := p.quizzes.Select(ctx, id, n-1)
		if errors.Is(err, domain.ErrChoiceOutOfRange) {
			fmt.Fprintln(p.out, "No such answer.")
			continue
		}
		if err != nil {
			return snap, err
		}
		snap = next
		fmt.Fprintf(p.out, "Selected: %s\n", snap.Question.Choices[snap.Selection])
	}
}

func (p *player) showResult(ctx context.Context, id string, snap domain.Snapshot) error {
	report, err := p.quizzes.Report(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\n%s\nCompleted at: %s\n\n%s\n", snap.Summary, report.CompletedAt, app.Breakdown(report))

	for {
		fmt.Fprint(p.out, "Email the report? Enter your name (blank to skip): ")
		name, err := p.readLine()
		if err != nil || name == "" {
			return err
		}
		fmt.Fprint(p.out, "Email: ")
		email, err := p.readLine()
		if err != nil {
			return err
		}

		fmt.Fprintln(p.out, "Sending...")
		err = <-p.reports.SendAsync(ctx, domain.Recipient{Name: name, Email: email}, report)
		switch {
		case err == nil:
			fmt.Fprintln(p.out, "Sent!")
			return nil
		case errors.Is(err, domain.ErrValidation):
			fmt.Fprintln(p.out, "Enter a valid email.")
		default:
			fmt.Fprintln(p.out, "Could not send.")
		}
	}
}

func (p *player) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func eofIsDone(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
