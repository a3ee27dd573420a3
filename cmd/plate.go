package cmd

import (
	"time"

	"github.com/jjtimmons/pudu/internal/platesetup"
	"github.com/spf13/cobra"
)

// plateCmd groups the plate setup protocols
var plateCmd = &cobra.Command{
	Use:                        "plate",
	Short:                      "Plan filling 96 well plates from sample tubes",
	SuggestionsMinimumDistance: 2,
}

// samplesCmd spreads samples into quadruplicate wells
var samplesCmd = &cobra.Command{
	Use:   "samples [sample] ... [sampleN]",
	Short: "Plate up to 24 samples, each in 4 wells",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSamples,
}

// dilutionCmd lays an inducer gradient along plate rows
var dilutionCmd = &cobra.Command{
	Use:   "dilution [sample] [inducer]",
	Short: "Plate a sample with a serial dilution of an inducer",
	Args:  cobra.ExactArgs(2),
	RunE:  runDilution,
	Long: `
Plate a sample supplemented with a serial dilution of an inducer. Each
replicate takes a row: column 1 holds a mix of sample and inducer that is
diluted, step by step, into the sample in the following columns.`,
}

func plateSettings(cmd *cobra.Command) platesetup.Settings {
	s := platesetup.NewSettings(conf)
	s.UseTemperatureModule, _ = cmd.Flags().GetBool("temperature-module")
	return s
}

func runSamples(cmd *cobra.Command, args []string) error {
	start := time.Now()
	tube, _ := cmd.Flags().GetFloat64("tube-volume")
	well, _ := cmd.Flags().GetFloat64("well-volume")

	p, err := platesetup.PlateSamples{Samples: args, TubeVolume: tube, WellVolume: well}.Protocol(plateSettings(cmd))
	if err != nil {
		return err
	}
	return output(cmd, p, start)
}

func runDilution(cmd *cobra.Command, args []string) error {
	start := time.Now()
	flags := cmd.Flags()
	d := platesetup.PlateSupplementedSamples{Sample: args[0], Inducer: args[1]}
	d.InitialSampleVolume, _ = flags.GetFloat64("initial-sample-volume")
	d.InitialInducerVolume, _ = flags.GetFloat64("initial-inducer-volume")
	d.DilutionVolume, _ = flags.GetFloat64("dilution-volume")
	d.Steps, _ = flags.GetInt("steps")
	d.Replicates, _ = flags.GetInt("replicates")
	d.StartingRow, _ = flags.GetString("starting-row")
	d.WellVolume, _ = flags.GetFloat64("well-volume")
	d.TubeVolume, _ = flags.GetFloat64("tube-volume")

	p, err := d.Protocol(plateSettings(cmd))
	if err != nil {
		return err
	}
	return output(cmd, p, start)
}

// set flags
func init() {
	plateCmd.PersistentFlags().Bool("temperature-module", false, "put the tube rack on a temperature module")

	samplesCmd.Flags().Float64("tube-volume", platesetup.DefaultTubeVolume, "volume in each sample tube (uL)")
	samplesCmd.Flags().Float64("well-volume", platesetup.DefaultWellVolume, "volume for each well (uL)")
	outputFlags(samplesCmd)

	dilutionCmd.Flags().Float64("initial-sample-volume", platesetup.DefaultInitialVolume, "sample in the first well of each row (uL)")
	dilutionCmd.Flags().Float64("initial-inducer-volume", platesetup.DefaultInitialVolume, "inducer in the first well of each row (uL)")
	dilutionCmd.Flags().Float64("dilution-volume", platesetup.DefaultDilutionVolume, "volume moved at each dilution step (uL)")
	dilutionCmd.Flags().Int("steps", platesetup.DefaultSteps, "dilution steps per row")
	dilutionCmd.Flags().IntP("replicates", "n", platesetup.DefaultReplicates, "replicate rows")
	dilutionCmd.Flags().String("starting-row", "A", "first row to use")
	dilutionCmd.Flags().Float64("well-volume", platesetup.DefaultWellVolume, "sample in each dilution well (uL)")
	dilutionCmd.Flags().Float64("tube-volume", platesetup.DefaultTubeVolume, "volume in each sample tube (uL)")
	outputFlags(dilutionCmd)

	plateCmd.AddCommand(samplesCmd)
	plateCmd.AddCommand(dilutionCmd)

	RootCmd.AddCommand(plateCmd)
}
