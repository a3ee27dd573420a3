package cmd

import (
	"time"

	"github.com/jjtimmons/pudu/internal/transformation"
	"github.com/spf13/cobra"
)

// transformCmd plans heat shock transformations of DNAs into competent cells
var transformCmd = &cobra.Command{
	Use:                        "transform [dna] ... [dnaN]",
	Short:                      "Plan chemical transformations of DNAs into competent cells",
	Args:                       cobra.MinimumNArgs(1),
	RunE:                       runTransform,
	SuggestionsMinimumDistance: 2,
	Long: `
Plan chemical transformations. Competent cells are dispensed into the
thermocycler, each DNA is added in replicate and heat shocked, then recovery
media is added and the cells recover at 37 C. The number of cell and media
tubes is computed from their volume per tube.`,
}

func runTransform(cmd *cobra.Command, args []string) error {
	start := time.Now()
	s := transformation.NewSettings(conf)
	if cmd.Flags().Changed("replicates") {
		s.Replicates, _ = cmd.Flags().GetInt("replicates")
	}
	if cmd.Flags().Changed("starting-well") {
		s.StartingWell, _ = cmd.Flags().GetInt("starting-well")
	}
	cells, _ := cmd.Flags().GetString("cells")
	media, _ := cmd.Flags().GetString("media")

	p, err := transformation.ChemicalTransformation{
		DNAs:           args,
		CompetentCells: cells,
		Media:          media,
	}.Protocol(s)
	if err != nil {
		return err
	}
	return output(cmd, p, start)
}

// set flags
func init() {
	transformCmd.Flags().String("cells", "competent_cells", "name of the competent cells")
	transformCmd.Flags().String("media", "media", "name of the recovery media")
	transformCmd.Flags().IntP("replicates", "n", 0, "replicates of each transformation, from the settings if unset")
	transformCmd.Flags().IntP("starting-well", "w", 0, "index of the first thermocycler well to use, from the settings if unset")
	outputFlags(transformCmd)

	RootCmd.AddCommand(transformCmd)
}
