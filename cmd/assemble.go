package cmd

import (
	"fmt"
	"time"

	"github.com/jjtimmons/pudu/internal/assembly"
	"github.com/jjtimmons/pudu/internal/ligation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sequencesHelp = `multi-FASTA with the sequence of every part, receiver and backbone.
When set, each combination's fusion sites are checked before planning.`

// assembleCmd groups the Golden Gate assembly protocols
var assembleCmd = &cobra.Command{
	Use:                        "assemble",
	Short:                      "Plan Golden Gate assembly protocols",
	SuggestionsMinimumDistance: 2,
	Long: `
Plan the reagent tubes, thermocycler wells and liquid transfers of Golden Gate
assemblies. Each combination of parts is assembled, in replicate, in its own
thermocycler well and then digested and ligated on the thermocycler.`,
}

// loopCmd plans Loop assemblies from a YAML file of assemblies
var loopCmd = &cobra.Command{
	Use:   "loop [assemblies.yaml]",
	Short: "Plan Loop assemblies of odd and even level receivers",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoop,
	Long: `
Plan Loop assemblies from a YAML list of assemblies. Each assembly maps roles
to one or more parts and has a "receiver" role. Every combination of one part
per role is assembled. Odd level receivers are assembled with BsaI and even
level receivers with SapI.

  - receiver: Odd_1
    promoter: [J23100, J23106]
    rbs: B0034
    cds: [GFP, RFP]
    terminator: B0015`,
}

// domesticationCmd moves parts into an acceptor backbone
var domesticationCmd = &cobra.Command{
	Use:   "domestication [part] ... [partN]",
	Short: "Plan moving parts into an acceptor backbone",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDomestication,
}

// compositeCmd assembles explicit lists of parts
var compositeCmd = &cobra.Command{
	Use:   "composite [composites.yaml]",
	Short: "Plan Golden Gate assemblies of explicit composites",
	Args:  cobra.ExactArgs(1),
	RunE:  runComposite,
	Long: `
Plan a Golden Gate assembly for each composite in a YAML list of part lists.

  - [pOdd1, J23100, B0034, GFP, B0015]
  - [pOdd1, J23106, B0034, RFP, B0015]`,
}

func runLoop(cmd *cobra.Command, args []string) error {
	assemblies, err := assembly.ReadAssemblies(args[0])
	if err != nil {
		return err
	}
	odd, _ := cmd.Flags().GetString("odd")
	even, _ := cmd.Flags().GetString("even")
	return assemble(cmd, assembly.LoopAssembly{Assemblies: assemblies, OddPattern: odd, EvenPattern: even})
}

func runDomestication(cmd *cobra.Command, args []string) error {
	backbone, _ := cmd.Flags().GetString("backbone")
	enzyme, _ := cmd.Flags().GetString("enzyme")
	return assemble(cmd, assembly.Domestication{Parts: args, Backbone: backbone, Enzyme: enzyme})
}

func runComposite(cmd *cobra.Command, args []string) error {
	composites, err := assembly.ReadComposites(args[0])
	if err != nil {
		return err
	}
	enzyme, _ := cmd.Flags().GetString("enzyme")
	return assemble(cmd, assembly.CompositeAssembly{Composites: composites, Enzyme: enzyme})
}

// assemble plans, checks and writes an assembly protocol
func assemble(cmd *cobra.Command, planner assembly.Planner) error {
	start := time.Now()
	s := assembly.NewSettings(conf)
	if cmd.Flags().Changed("replicates") {
		s.Replicates, _ = cmd.Flags().GetInt("replicates")
	}
	if cmd.Flags().Changed("starting-well") {
		s.StartingWell, _ = cmd.Flags().GetInt("starting-well")
	}

	plan, err := planner.Plan(s)
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("sequences"); path != "" {
		if err := checkSequences(path, plan); err != nil {
			return err
		}
	}

	p, err := assembly.Build(plan, s)
	if err != nil {
		return err
	}
	return output(cmd, p, start)
}

// checkSequences checks the fusion sites of every distinct reaction and,
// where the enzyme is supported, simulates the assembly
func checkSequences(path string, plan *assembly.Plan) error {
	seqs, err := ligation.ReadFASTA(path, true)
	if err != nil {
		return err
	}

	checked := make(map[string]bool)
	for _, r := range plan.Reactions {
		key := r.Enzyme + ":" + r.Name()
		if checked[key] {
			continue
		}
		checked[key] = true

		e, err := ligation.NewEnzyme(r.Enzyme)
		if err != nil {
			return err
		}
		parts, err := ligation.Lookup(seqs, r.Parts)
		if err != nil {
			return err
		}
		if err := ligation.CheckFusionSites(parts, e); err != nil {
			return fmt.Errorf("%s: %w", r.Name(), err)
		}
		if ligation.CanSimulate(r.Enzyme) {
			construct, err := ligation.Simulate(parts, r.Enzyme)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name(), err)
			}
			zap.L().Debug("simulated assembly", zap.String("construct", r.Name()), zap.Int("length", len(construct)))
		}
	}
	return nil
}

// set flags
func init() {
	assembleCmd.PersistentFlags().StringP("sequences", "q", "", sequencesHelp)
	assembleCmd.PersistentFlags().IntP("replicates", "n", 0, "replicates of each reaction, from the settings if unset")
	assembleCmd.PersistentFlags().IntP("starting-well", "w", 0, "index of the first thermocycler well to use, from the settings if unset")

	loopCmd.Flags().String("odd", "Odd*", "pattern of odd level receiver names")
	loopCmd.Flags().String("even", "Even*", "pattern of even level receiver names")
	outputFlags(loopCmd)

	domesticationCmd.Flags().StringP("backbone", "b", "", "acceptor backbone the parts are moved into")
	domesticationCmd.Flags().StringP("enzyme", "e", "BsaI", "enzyme that releases the parts")
	domesticationCmd.MarkFlagRequired("backbone")
	outputFlags(domesticationCmd)

	compositeCmd.Flags().StringP("enzyme", "e", "BsaI", "enzyme of the assemblies")
	outputFlags(compositeCmd)

	assembleCmd.AddCommand(loopCmd)
	assembleCmd.AddCommand(domesticationCmd)
	assembleCmd.AddCommand(compositeCmd)

	RootCmd.AddCommand(assembleCmd)
}
