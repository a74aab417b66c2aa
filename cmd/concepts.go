package cmd

import (
	"fmt"

	"github.com/solotrader/tradecraft/internal/ui"
	"github.com/spf13/cobra"
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "Show concept progression and mastery",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, conn, err := buildEngine(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		cat, err := resolveCatalog(cmd)
		if err != nil {
			return err
		}

		for _, cd := range cat.Concepts() {
			unlocked, err := eng.IsConceptUnlocked(cd.ID)
			if err != nil {
				return err
			}

			switch {
			case eng.IsConceptMastered(cd.ID):
				fmt.Printf("%s  %s\n", ui.Good.Render("★"), ui.Body.Render(cd.Title))
			case unlocked:
				fmt.Printf("%s  %s\n", ui.Body.Render("○"), ui.Body.Render(cd.Title))
			default:
				fmt.Printf("%s  %s\n", ui.Hint.Render("🔒"), ui.Hint.Render(cd.Title))
				continue
			}

			prog := eng.ConceptProgress(cd.ID)
			for _, st := range cd.Stages {
				mark := ui.Hint.Render("·")
				if prog.CompletedStages[st.ID] {
					mark = ui.Good.Render("✓")
				}
				done := 0
				for _, q := range st.RequiredQuests {
					if prog.CompletedQuests[q] {
						done++
					}
				}
				fmt.Printf("    %s %s  %s\n", mark, st.Title,
					ui.Subtitle.Render(fmt.Sprintf("%d/%d quests", done, len(st.RequiredQuests))))
			}
		}
		return nil
	},
}
