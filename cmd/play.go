package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/engine"
	"github.com/solotrader/tradecraft/internal/ui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [quest-id]",
	Short: "Start a marking drill",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	eng, _, conn, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer conn.Close()

	streakCount := eng.RecordDailyActivity(ctx)
	fmt.Println(ui.Subtitle.Render(fmt.Sprintf("Streak: %d day(s)", streakCount)))
	fmt.Println()

	questID := ""
	if args := cmd.Flags().Args(); len(args) == 1 {
		questID = args[0]
	}
	if questID == "" {
		questID, err = pickDailyQuest(eng)
		if err != nil {
			return err
		}
		if questID == "" {
			return nil
		}
	}

	view, err := eng.StartQuest(ctx, questID)
	if err != nil {
		return fmt.Errorf("start quest: %w", err)
	}
	return questLoop(cmd, eng, view)
}

// questLoop runs the marking REPL for an open session, quest or
// practical.
func questLoop(cmd *cobra.Command, eng *engine.Engine, view engine.SessionView) error {
	ctx := cmd.Context()

	fmt.Println(ui.Title.Render(view.QuestTitle))
	fmt.Println(ui.Subtitle.Render(fmt.Sprintf("Rep %d of %d", view.CompletedReps+1, view.RequiredReps)))
	fmt.Println(ui.Hint.Render("Commands: mark <x> <y> <type> [label], clear, submit, exit"))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(ui.Body.Render("> "))
		if !scanner.Scan() {
			return eng.ExitQuest(ctx)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "mark":
			if err := markFromFields(eng, fields[1:]); err != nil {
				fmt.Println(ui.Bad.Render(err.Error()))
			}
		case "clear":
			if err := eng.ClearMarkings(); err != nil {
				fmt.Println(ui.Bad.Render(err.Error()))
			}
		case "submit":
			done, err := submitAndReport(cmd, eng)
			if err != nil {
				fmt.Println(ui.Bad.Render(err.Error()))
				continue
			}
			if done {
				return nil
			}
		case "exit":
			return eng.ExitQuest(ctx)
		default:
			fmt.Println(ui.Hint.Render("unknown command"))
		}
	}
}

// pickDailyQuest lists today's quests and reads a selection. An empty
// return means the learner quit the picker.
func pickDailyQuest(eng *engine.Engine) (string, error) {
	daily := eng.DailyQuests()
	if len(daily) == 0 {
		fmt.Println("No quests available at your level yet.")
		return "", nil
	}

	fmt.Println(ui.Title.Render("Today's Quests"))
	for i, q := range daily {
		fmt.Printf("  %d. %s\n", i+1, formatQuestLine(q))
	}
	fmt.Print(ui.Body.Render("Pick a quest (number, or q to quit): "))

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", nil
	}
	choice := strings.TrimSpace(scanner.Text())
	if choice == "" || choice == "q" {
		return "", nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(daily) {
		return "", fmt.Errorf("invalid selection %q", choice)
	}
	return daily[n-1].ID, nil
}

func formatQuestLine(q catalog.QuestDefinition) string {
	line := fmt.Sprintf("%s  %s", ui.Body.Render(q.Title),
		ui.Subtitle.Render(fmt.Sprintf("[%s, %d reps, +%d XP]", q.Tier, q.RequiredReps, q.RewardXP)))
	if q.RewardCoins > 0 {
		line += ui.Subtitle.Render(fmt.Sprintf(" +%d coins", q.RewardCoins))
	}
	return line
}

func markFromFields(eng *engine.Engine, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: mark <x> <y> <type> [label]")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q", args[1])
	}
	label := ""
	if len(args) > 3 {
		label = strings.Join(args[3:], " ")
	}
	return eng.AddMarking(x, y, args[2], label)
}

// submitAndReport runs validation and prints the outcome. It returns
// true when the quest is complete and the loop should end.
func submitAndReport(cmd *cobra.Command, eng *engine.Engine) (bool, error) {
	fmt.Println(ui.Hint.Render("Validating markings..."))
	res, err := eng.SubmitAttempt(cmd.Context())
	if err != nil {
		return false, err
	}

	for _, fb := range res.Outcome.Feedback {
		if fb.Passed {
			fmt.Println("  " + ui.Good.Render("✓ "+fb.Message))
		} else {
			fmt.Println("  " + ui.Bad.Render("✗ "+fb.Message))
			if fb.Suggestion != "" {
				fmt.Println("    " + ui.Hint.Render(fb.Suggestion))
			}
		}
	}
	fmt.Printf("Score: %d%%\n", res.Outcome.Score)

	switch {
	case res.QuestCompleted:
		fmt.Println(ui.Good.Render("Quest complete!"))
		reportPendingTests(eng)
		return true, nil
	case res.RepCompleted:
		view, err := eng.Session()
		if err != nil {
			return false, err
		}
		fmt.Println(ui.Good.Render(fmt.Sprintf("Rep passed! +%d XP", engine.RepXP)))
		fmt.Println(ui.Subtitle.Render(fmt.Sprintf("Rep %d of %d", view.CompletedReps+1, view.RequiredReps)))
	default:
		fmt.Println(ui.Bad.Render("Not quite. Adjust your markings and resubmit."))
	}
	return false, nil
}

func reportPendingTests(eng *engine.Engine) {
	pending := eng.PendingTests()
	if len(pending) == 0 {
		return
	}
	fmt.Println(ui.Subtitle.Render("Knowledge checks unlocked:"))
	for _, p := range pending {
		fmt.Printf("  %s (%s)\n", p.ID, p.Type)
	}
	fmt.Println(ui.Hint.Render("Run: tradecraft test"))
}
