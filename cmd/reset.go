package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/solotrader/tradecraft/internal/db"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all saved progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This erases your profile, quest progress and achievements. Type 'reset' to confirm: ")
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "reset" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		conn, err := db.OpenDB(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		for _, table := range []string{
			"profile", "quest_progress", "concept_quests", "concept_stages",
			"achievements", "validation_log", "knowledge_results",
		} {
			if _, err := conn.ExecContext(cmd.Context(), "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		fmt.Println("Progress erased.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
