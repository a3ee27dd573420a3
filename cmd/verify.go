package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/jjtimmons/pudu/internal/protocol"
	"github.com/jjtimmons/pudu/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// verifyCmd replays a saved protocol against the simulator
var verifyCmd = &cobra.Command{
	Use:   "verify [protocol.json]",
	Short: "Check a saved protocol against a simulated robot",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
	Long: `
Replay a protocol written with --out against a simulated robot. The simulator
checks tip handling, pipette volumes, loaded labware and thermocycler lid
state, then the tips used and the net volume in every well are printed.`,
}

func runVerify(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open protocol: %w", err)
	}
	defer f.Close()

	p, err := protocol.ReadJSON(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sim := protocol.NewSimulator()
	var robot protocol.Robot = sim
	if viper.GetBool("verbose") {
		robot = protocol.Tee{protocol.LogRobot{Logger: zap.L()}, sim}
	}
	if err := protocol.Replay(ctx, robot, p); err != nil {
		return err
	}
	if sim.Holding() {
		return fmt.Errorf("%w: a pipette still has a tip at the end of the protocol", protocol.ErrTip)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d commands ok\n", p.Metadata.Name, len(p.Commands))
	for _, pipette := range sortedKeys(sim.TipsUsed) {
		fmt.Fprintf(w, "%s: %d tips\n", pipette, sim.TipsUsed[pipette])
	}

	wells := make([]protocol.Location, 0, len(sim.Volumes))
	for loc := range sim.Volumes {
		wells = append(wells, loc)
	}
	sort.Slice(wells, func(i, j int) bool {
		if wells[i].Labware != wells[j].Labware {
			return wells[i].Labware < wells[j].Labware
		}
		return wells[i].Well < wells[j].Well
	})
	for _, loc := range wells {
		fmt.Fprintf(w, "%s %s: %+.1f uL\n", loc.Labware, loc.Well, sim.Volumes[loc])
	}

	if layout, _ := cmd.Flags().GetBool("layout"); layout {
		fmt.Fprint(w, report.New(p, 0).Render())
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	verifyCmd.Flags().Bool("layout", false, "print plate maps of the layout")

	RootCmd.AddCommand(verifyCmd)
}
