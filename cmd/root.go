package cmd

import (
	"fmt"

	"github.com/bnema/hfss-client/internal/config"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hfss",
		Short:         "Script an HFSS design from the terminal",
		Long:          "hfss drives the active design of a running HFSS instance: design variables, primitive geometry, boolean operations, eigenmode excitation and field calculator expressions. Use --dry-run to play commands against an in-memory host and print the resulting call transcript.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "Config file (default ~/.hfss/config.toml)")
	flags.BoolVar(&app.dryRun, "dry-run", false, "Use an in-memory host and print the call transcript")
	flags.Bool("trace", false, "Print a trace span for every host call to stderr")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	for key, name := range map[string]string{
		config.KeyTraceEnabled: "trace",
		config.KeyLogLevel:     "log-level",
	} {
		if err := app.viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
			return rootCmd
		}
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return app.loadConfig(cmd)
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newVarCmd(app),
		newDrawCmd(app),
		newBooleanCmd(app, "unite"),
		newBooleanCmd(app, "intersect"),
		newMoveCmd(app),
		newPropCmd(app),
		newModesCmd(app),
		newCalcCmd(app),
		newRunCmd(app),
	)

	return rootCmd
}
