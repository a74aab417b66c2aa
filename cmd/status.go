package cmd

import (
	"fmt"

	"github.com/solotrader/tradecraft/internal/progression"
	"github.com/solotrader/tradecraft/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show profile, rank, streak and achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, repos, conn, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		p := eng.Profile()
		required := progression.Requirement(p.Level)

		fmt.Println(ui.RankBadge(eng.Rank(), eng.RankColor().Hex()))
		fmt.Printf("Level %d", p.Level)
		if p.Level >= progression.MaxLevel {
			fmt.Print(ui.Subtitle.Render(" (max)"))
		}
		fmt.Println()
		if required > 0 {
			fmt.Println(ui.Bar(float64(p.XP)/float64(required), 30, ui.XPReadout(p.XP, required)))
		}
		fmt.Printf("Coins: %d   Streak: %d day(s)\n", p.Coins, eng.Streak())

		stats, err := repos.ValidationLog.Stats(ctx)
		if err != nil {
			return err
		}
		if stats.Attempts > 0 {
			fmt.Printf("Validation attempts: %d (%d passed)\n", stats.Attempts, stats.Passed)
		}

		unlocked := eng.Achievements()
		if len(unlocked) > 0 {
			fmt.Println()
			fmt.Println(ui.Title.Render("Achievements"))
			for _, a := range unlocked {
				fmt.Printf("  %s  %s\n", ui.Good.Render(a.Title),
					ui.Subtitle.Render(a.UnlockedAt.Local().Format("2006-01-02")))
			}
		}

		if pending := eng.PendingTests(); len(pending) > 0 {
			fmt.Println()
			fmt.Println(ui.Title.Render("Pending Knowledge Checks"))
			for _, t := range pending {
				fmt.Printf("  %s (%s)\n", t.ID, t.Type)
			}
		}
		return nil
	},
}
