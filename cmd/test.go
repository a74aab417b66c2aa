package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/solotrader/tradecraft/internal/concept"
	"github.com/solotrader/tradecraft/internal/engine"
	"github.com/solotrader/tradecraft/internal/knowledge"
	"github.com/solotrader/tradecraft/internal/ui"
	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test [pending-id]",
	Short: "Take a pending knowledge check",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, conn, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		pending := eng.PendingTests()
		if len(pending) == 0 {
			fmt.Println("No pending knowledge checks. Complete quests to unlock them.")
			return nil
		}

		var picked engine.PendingTest
		if len(args) == 1 {
			found := false
			for _, p := range pending {
				if p.ID == args[0] {
					picked, found = p, true
					break
				}
			}
			if !found {
				return fmt.Errorf("no pending check %q", args[0])
			}
		} else {
			picked, err = pickPendingTest(pending)
			if err != nil || picked.ID == "" {
				return err
			}
		}

		if picked.Type == concept.TestPractical {
			view, err := eng.StartPracticalAssessment(cmd.Context(), picked.ID)
			if err != nil {
				return fmt.Errorf("start practical: %w", err)
			}
			return questLoop(cmd, eng, view)
		}
		return runMCQTest(cmd, eng, picked.ID)
	},
}

func pickPendingTest(pending []engine.PendingTest) (engine.PendingTest, error) {
	fmt.Println(ui.Title.Render("Pending Knowledge Checks"))
	for i, p := range pending {
		fmt.Printf("  %d. %s (%s)\n", i+1, p.ID, p.Type)
	}
	fmt.Print(ui.Body.Render("Pick a check (number, or q to quit): "))

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return engine.PendingTest{}, nil
	}
	choice := strings.TrimSpace(scanner.Text())
	if choice == "" || choice == "q" {
		return engine.PendingTest{}, nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(pending) {
		return engine.PendingTest{}, fmt.Errorf("invalid selection %q", choice)
	}
	return pending[n-1], nil
}

func runMCQTest(cmd *cobra.Command, eng *engine.Engine, pendingID string) error {
	ctx := cmd.Context()

	view, err := eng.StartTest(pendingID)
	if err != nil {
		return fmt.Errorf("start test: %w", err)
	}
	fmt.Println(ui.Title.Render("Knowledge Check"))
	fmt.Println(ui.Subtitle.Render(fmt.Sprintf("%d questions, pass at %d%%. Answer with the option number, s to submit, q to abandon.",
		view.Questions, knowledge.DefaultPassingScore)))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for i := 0; i < view.Questions; i++ {
		// The deadline still applies while the learner is reading.
		if res, fired, err := eng.TickTest(ctx); err != nil {
			return err
		} else if fired {
			reportTestResult(res.ScorePercent, res.Passed)
			return nil
		}

		q, err := eng.TestQuestion(i)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", ui.Body.Render(fmt.Sprintf("Q%d.", i+1)), q.Text)
		for j, opt := range q.Options {
			fmt.Printf("   %d. %s\n", j+1, opt)
		}

		for {
			fmt.Print(ui.Body.Render("answer> "))
			if !scanner.Scan() {
				return eng.AbandonTest()
			}
			in := strings.TrimSpace(scanner.Text())
			if in == "q" {
				return eng.AbandonTest()
			}
			if in == "s" {
				i = view.Questions // stop the outer loop
				break
			}
			n, err := strconv.Atoi(in)
			if err != nil || n < 1 || n > len(q.Options) {
				fmt.Println(ui.Hint.Render("pick an option number"))
				continue
			}
			if err := eng.Answer(i, n-1); err != nil {
				return err
			}
			break
		}
		fmt.Println()
	}

	res, err := eng.SubmitTest(ctx)
	if err != nil {
		return err
	}
	reportTestResult(res.ScorePercent, res.Passed)
	return nil
}

func reportTestResult(score int, passed bool) {
	if passed {
		fmt.Println(ui.Good.Render(fmt.Sprintf("Passed with %d%%! +%d XP", score, engine.TestPassXP)))
		return
	}
	fmt.Println(ui.Bad.Render(fmt.Sprintf("Scored %d%%. Review the material and try again.", score)))
}
