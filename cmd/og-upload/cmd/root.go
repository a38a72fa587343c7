package cmd

import (
	"io"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Modenjaya/og-upload/pkg/types"
)

// NewRootCmd builds the og-upload command tree. Running the root command
// without a subcommand starts an upload run.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           types.AppName,
		Short:         "Upload random content to 0G storage and register it on chain",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          runUploads,
	}
	addConfigFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Upload files for every wallet in the key file",
			Args:  cobra.NoArgs,
			RunE:  runUploads,
		},
		&cobra.Command{
			Use:   "validate-keys",
			Short: "Check the key file and print the derived addresses",
			Args:  cobra.NoArgs,
			RunE:  validateKeys,
		},
	)
	return rootCmd
}

// resolve reads flags, env and config file for cmd and builds the logger.
func resolve(cmd *cobra.Command) (Config, log.Logger, error) {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return Config{}, nil, err
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return Config{}, nil, err
	}
	logger, err := newLogger(cmd.OutOrStdout(), cfg.LogLevel)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, types.ErrConfiguration.Wrapf("log level %q: %s", level, err)
	}
	return log.NewLogger(w, log.LevelOption(lvl), log.ColorOption(false)), nil
}
