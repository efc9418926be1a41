package main

import (
	"fmt"
	"os"

	"github.com/Desarso/fitcoach"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// app carries the global flags and the logger built from them.
type app struct {
	configPath string
	verbose    bool
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{})
}

func newRootCmdFor(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fitcoach",
		Short: "FitCoach - a Gemini-powered fitness coach",
		Long:  "FitCoach keeps your profile, answers coaching questions and generates plans, images and demo videos.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil {
				return nil
			}
			logger, err := buildLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newChatCmd(a))
	cmd.AddCommand(newTipCmd(a))
	cmd.AddCommand(newProfileCmd(a))
	return cmd
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return config.Build()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return config.Build()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fitcoach %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// openCoach loads the configuration and opens the coach. Interactive
// commands pass a key prompt for when the configured key is rejected.
func (a *app) openCoach(opts ...fitcoach.CoachOption) (*fitcoach.Config, *fitcoach.Coach, error) {
	cfg, err := fitcoach.LoadConfig(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	coach, err := fitcoach.NewCoach(cfg, a.logger, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, coach, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
