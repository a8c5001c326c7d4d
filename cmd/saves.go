package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dimaq12/minesweeper/config"
	"github.com/dimaq12/minesweeper/storage"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Manage saved games",
}

var savesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved games, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSavesList,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved game",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavesDelete,
}

func init() {
	savesCmd.AddCommand(savesListCmd)
	savesCmd.AddCommand(savesDeleteCmd)
	rootCmd.AddCommand(savesCmd)
}

func openSaves() (*storage.SaveStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return storage.NewSaveStore(cfg.SaveDir)
}

func runSavesList(cmd *cobra.Command, _ []string) error {
	saves, err := openSaves()
	if err != nil {
		return err
	}
	list, err := saves.List(cmd.Context())
	if err != nil {
		return err
	}
	return writeSaveList(cmd.OutOrStdout(), list)
}

func runSavesDelete(cmd *cobra.Command, args []string) error {
	saves, err := openSaves()
	if err != nil {
		return err
	}
	if err := saves.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	logrus.WithField("save", args[0]).Info("save deleted")
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

// writeSaveList prints one row per save.
func writeSaveList(w io.Writer, list []storage.SaveInfo) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no saved games")
		return err
	}
	width := len("NAME")
	for _, s := range list {
		width = max(width, len(s.Name))
	}
	if _, err := fmt.Fprintf(w, "%-*s  %-10s  %-7s  %6s  %-11s  %s\n", width, "NAME", "DIFFICULTY", "SIZE", "TIME", "STATUS", "SAVED"); err != nil {
		return err
	}
	for _, s := range list {
		size := fmt.Sprintf("%dx%d", s.Width, s.Height)
		_, err := fmt.Fprintf(w, "%-*s  %-10s  %-7s  %5ds  %-11s  %s\n", width, s.Name, s.Difficulty, size,
			s.Elapsed, s.Status, s.SavedAt.Local().Format("2006-01-02 15:04"))
		if err != nil {
			return err
		}
	}
	return nil
}
