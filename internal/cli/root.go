package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-ai/internal/config"
)

type options struct {
	configPath string
	logFile    string
}

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	var conf *config.Config

	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-Tac-Toe against Gemini",
		Long: `tictactoe serves a browser game where you play X against a Gemini-backed opponent
or against a friend on the same board. The play subcommand runs the same game in the terminal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			conf = loaded
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yml", "Path to the yml config file")

	serveCmd := newServeCmd(func() *config.Config { return conf })
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newPlayCmd(opts, func() *config.Config { return conf }))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
