package cmd

import (
	"time"

	"github.com/jjtimmons/pudu/internal/calibration"
	"github.com/spf13/cobra"
)

// calibrateCmd groups the calibration plate protocols
var calibrateCmd = &cobra.Command{
	Use:                        "calibrate",
	Short:                      "Plan fluorescence and OD600 calibration plates",
	SuggestionsMinimumDistance: 2,
	Long: `
Plan iGEM calibration plates: 1:2 serial dilutions of fluorescent calibrants
and microspheres along the rows of a 96 well plate.`,
}

var gfpCmd = &cobra.Command{
	Use:   "gfp",
	Short: "Fluorescein and microspheres calibration plate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return calibrate(cmd, calibration.GFP)
	},
}

var rgbCmd = &cobra.Command{
	Use:   "rgb",
	Short: "Fluorescein, sulforhodamine 101, cascade blue and microspheres calibration plate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return calibrate(cmd, calibration.RGB)
	},
}

func calibrate(cmd *cobra.Command, l calibration.Layout) error {
	start := time.Now()
	s := calibration.NewSettings(conf)
	s.UseFalconTubes, _ = cmd.Flags().GetBool("falcon")
	s.UseTemperatureModule, _ = cmd.Flags().GetBool("temperature-module")

	p, err := calibration.Protocol(l, s)
	if err != nil {
		return err
	}
	return output(cmd, p, start)
}

// set flags
func init() {
	calibrateCmd.PersistentFlags().Bool("falcon", false, "take PBS and water from falcon tubes instead of tubes in the rack")
	calibrateCmd.PersistentFlags().Bool("temperature-module", true, "put the tube rack on a temperature module")

	outputFlags(gfpCmd)
	outputFlags(rgbCmd)

	calibrateCmd.AddCommand(gfpCmd)
	calibrateCmd.AddCommand(rgbCmd)

	RootCmd.AddCommand(calibrateCmd)
}
