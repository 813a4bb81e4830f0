package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/equipd/snapmerge/internal/errors"
	"github.com/equipd/snapmerge/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snapmerge",
	Short: "Snapshot and restore equipment inventory collections",
	Long: `snapmerge captures timestamped CSV snapshots of the equipment and
select-options collections and merges them back when data is lost.

The restore is a smart merge, not a wipe: records are matched by their
identifier column, changed fields are updated in place, missing records
are inserted, and everything already in sync is left alone. Nothing in
the live collection is deleted unless you explicitly ask for replace
mode.

TYPICAL FLOW:
  snapmerge backup              # capture a snapshot (throttled)
  snapmerge list                # see what exists, grouped by weekday
  snapmerge preview             # dry-run the merge against live data
  snapmerge restore             # apply the merge

Snapshots live in per-weekday folders under the backup directory and are
pruned after the retention window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			runVersion(cmd, []string{})
			return nil
		}
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errors.DisplayError(err)
		os.Exit(errors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.snapmerge/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Bool("version", false, "show version information")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.AddCommand(newBackupCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newPreviewCommand())
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newCompareCommand())
	rootCmd.AddCommand(newAuditCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newPruneCommand())
	rootCmd.AddCommand(newScheduleCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return fmt.Errorf("failed to expand config paths: %w", err)
	}

	return cfg.Validate()
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
