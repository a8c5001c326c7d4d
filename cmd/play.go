package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dimaq12/minesweeper/config"
	"github.com/dimaq12/minesweeper/game"
	"github.com/dimaq12/minesweeper/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a game in the terminal",
	Long: `Starts the terminal UI. Running minesweeper without a subcommand does the same.

The board size comes from --difficulty (easy, medium, hard or custom).
A custom board takes its size from --width, --height and --mines.`,
	PreRunE: bindPlayFlags,
	RunE:    runPlay,
}

func init() {
	addPlayFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("difficulty", "d", "", "easy, medium, hard or custom")
	cmd.Flags().Int("width", 0, "custom board width")
	cmd.Flags().Int("height", 0, "custom board height")
	cmd.Flags().Int("mines", 0, "custom mine count")
	cmd.Flags().Uint64("seed", 0, "mine placement seed (0 picks one)")
	cmd.Flags().String("load", "", "saved game to resume")
}

// bindPlayFlags binds the flags of the command actually running. Root and
// play share config keys, so binding happens here rather than in init.
func bindPlayFlags(cmd *cobra.Command, _ []string) error {
	for key, flag := range map[string]string{
		"difficulty":    "difficulty",
		"custom.width":  "width",
		"custom.height": "height",
		"custom.mines":  "mines",
		"seed":          "seed",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	difficulty, err := cfg.Board()
	if err != nil {
		return err
	}

	saves, err := storage.NewSaveStore(cfg.SaveDir)
	if err != nil {
		return err
	}
	scores, err := storage.NewScoreStore(cmd.Context(), cfg.ScoresPath)
	if err != nil {
		return err
	}
	defer scores.Close()

	svc := game.NewMinesweeperService(saves, scores,
		game.WithSeed(cfg.Seed),
		game.WithDifficulty(difficulty),
	)
	if name, _ := cmd.Flags().GetString("load"); name != "" {
		if err := svc.Load(cmd.Context(), name); err != nil {
			return err
		}
	}

	var changes <-chan struct{}
	watcher, err := storage.NewSaveWatcher(saves.Dir())
	if err != nil {
		logrus.WithError(err).Warn("save directory watcher unavailable")
	} else {
		defer watcher.Stop()
		changes = watcher.Changes
	}

	logrus.WithFields(logrus.Fields{
		"difficulty": difficulty.String(),
		"save_dir":   cfg.SaveDir,
		"scores":     cfg.ScoresPath,
	}).Info("starting game UI")

	return game.NewGameController(svc).StartGame(cmd.Context(), changes)
}
