package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dimaq12/minesweeper/config"
	"github.com/dimaq12/minesweeper/models"
	"github.com/dimaq12/minesweeper/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [DIFFICULTY]",
	Short: "Show the best times",
	Long:  "Shows the ten best winning times for one difficulty, or for every difficulty when none is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScores,
}

func init() {
	rootCmd.AddCommand(scoresCmd)
}

func runScores(cmd *cobra.Command, args []string) error {
	labels := models.Labels()
	if len(args) == 1 {
		label, err := models.NormalizeLabel(args[0])
		if err != nil {
			return err
		}
		labels = []string{label}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := storage.NewScoreStore(cmd.Context(), cfg.ScoresPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	for i, label := range labels {
		scores, err := store.Top(cmd.Context(), label, storage.TopScores)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := writeScores(out, label, scores); err != nil {
			return err
		}
	}
	return nil
}

// writeScores prints a ranked table for one difficulty.
func writeScores(w io.Writer, label string, scores []storage.Score) error {
	fmt.Fprintf(w, "%s\n", label)
	if len(scores) == 0 {
		_, err := fmt.Fprintln(w, "  no scores yet")
		return err
	}
	for i, sc := range scores {
		board := fmt.Sprintf("%dx%d/%d", sc.Width, sc.Height, sc.Mines)
		_, err := fmt.Fprintf(w, "  %2d. %5ds  %-9s  %s\n", i+1, sc.Seconds, board,
			sc.AchievedAt.Local().Format("2006-01-02 15:04"))
		if err != nil {
			return err
		}
	}
	return nil
}
