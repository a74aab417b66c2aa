package cmd

import (
	"errors"
	"fmt"

	"github.com/solotrader/tradecraft/internal/repository"
	"github.com/solotrader/tradecraft/internal/ui"
	"github.com/spf13/cobra"
)

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Show today's quest rotation and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, repos, conn, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		daily := eng.DailyQuests()
		if len(daily) == 0 {
			fmt.Println("No quests available at your level yet.")
			return nil
		}

		fmt.Println(ui.Title.Render("Today's Quests"))
		for _, q := range daily {
			fmt.Println("  " + formatQuestLine(q))

			prog, err := repos.QuestProgress.Get(ctx, q.ID)
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Println("    " + ui.Hint.Render("not started"))
				continue
			}
			if err != nil {
				return err
			}
			if prog.Completed {
				fmt.Println("    " + ui.Good.Render("completed"))
				continue
			}
			fmt.Printf("    %s\n", ui.Bar(float64(prog.CompletedReps)/float64(q.RequiredReps), 20,
				fmt.Sprintf("%d / %d reps", prog.CompletedReps, q.RequiredReps)))
		}
		return nil
	},
}
