package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dimaq12/minesweeper/config"
	"github.com/dimaq12/minesweeper/logging"
)

var rootCmd = &cobra.Command{
	Use:               "minesweeper",
	Short:             "Terminal minesweeper",
	Long:              "Clear the minefield without detonating a mine. The first cell you open is always safe.",
	PersistentPreRunE: setupLogging,
	PreRunE:           bindPlayFlags,
	RunE:              runPlay,
	SilenceUsage:      true,
}

// logCloser is closed once the command finishes.
var logCloser io.Closer

func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logrus.Info("session ended")
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .minesweeper.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("save-dir", "", "directory holding saved games")
	rootCmd.PersistentFlags().String("scores", "", "high score database path")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for daily log files")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("save_dir", rootCmd.PersistentFlags().Lookup("save-dir"))
	_ = viper.BindPFlag("scores_path", rootCmd.PersistentFlags().Lookup("scores"))
	_ = viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	addPlayFlags(rootCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".minesweeper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("MINESWEEPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// setupLogging opens the daily log file before any command runs.
func setupLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closer, err := logging.Setup(cfg.LogDir, cfg.Verbose)
	if err != nil {
		return err
	}
	logCloser = closer
	logrus.WithField("command", cmd.CommandPath()).Info("starting minesweeper")
	return nil
}
