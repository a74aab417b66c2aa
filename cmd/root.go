package cmd

import (
	"os"

	"github.com/solotrader/tradecraft/internal/db"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradecraft",
	Short: "Trading-skills trainer",
	Long:  "Tradecraft — terminal trainer for chart-marking drills, concept mastery and knowledge checks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TRADECRAFT_DB env var)")
	rootCmd.PersistentFlags().String("content", "", "Path to an external content pack (JSON)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(questsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(conceptsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then TRADECRAFT_DB env var, then the default location.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, nil
	}
	if p := os.Getenv("TRADECRAFT_DB"); p != "" {
		return p, nil
	}
	return db.DefaultPath()
}
