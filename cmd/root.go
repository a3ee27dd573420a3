// Package cmd is for command line interactions with the pudu application
package cmd

import (
	"fmt"
	"os"

	"github.com/jjtimmons/pudu/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// conf is loaded by setup before any subcommand runs
var conf *config.Config

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "pudu",
	Short: `Plan Opentrons protocols for DNA assembly, transformation, plate setup
and calibration`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup installs the global logger and loads settings
func setup(cmd *cobra.Command, args []string) error {
	lc := zap.NewProductionConfig()
	lc.Encoding = "console"
	lc.EncoderConfig.TimeKey = ""
	if viper.GetBool("verbose") {
		lc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := lc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	c, err := config.Load(viper.GetString("settings"))
	if err != nil {
		return err
	}
	conf = c
	zap.L().Debug("settings loaded", zap.String("file", viper.GetString("settings")))
	return nil
}

func init() {
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug messages")
	RootCmd.PersistentFlags().StringP("settings", "s", "", "settings file overriding the defaults, ./"+config.RootSettingsFile+" if it exists <YAML>")

	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("settings", RootCmd.PersistentFlags().Lookup("settings"))
}
