package assembly

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jjtimmons/pudu/config"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
)

// names of the shared reagent tubes
const (
	Water  = "dd_h2o"
	Ligase = "t4_dna_ligase"
	Buffer = "t4_dna_ligase_buffer"
)

// ids of the deck items, also the variable names in generated Python
const (
	temperatureModule = "temperature_module"
	tubeRack          = "tube_rack"
	thermocycler      = "thermocycler"
	thermocyclerPlate = "thermocycler_plate"
	tiprack           = "tiprack"
	pipette           = "pipette"
)

var (
	// cycles from https://pubs.acs.org/doi/10.1021/sb500366v
	digestLigate = []protocol.Step{{Temperature: 42, HoldMinutes: 2}, {Temperature: 16, HoldMinutes: 5}}
	denature     = []protocol.Step{{Temperature: 60, HoldMinutes: 10}, {Temperature: 80, HoldMinutes: 10}}
)

const (
	digestLigateCycles = 25
	blockMaxVolume     = 30
	coldHold           = 4
	lidTemperature     = 42
)

// Reaction is a single replicate of a combination of parts in one well
type Reaction struct {
	Parts     []string
	Enzyme    string
	Water     float64
	Replicate int
}

// Name of the construct the reaction makes
func (r Reaction) Name() string {
	return strings.Join(r.Parts, "-")
}

// Plan is the reagent tubes and reactions of an assembly protocol
type Plan struct {
	Name        string
	Description string

	// Reagents in the order they're placed in the tube rack
	Reagents []string

	// Reactions in the order they're placed in the thermocycler
	Reactions []Reaction
}

// Planner turns a design into a Plan
type Planner interface {
	Plan(s Settings) (*Plan, error)
}

// Settings are the volumes, labware and instruments of assembly protocols
type Settings struct {
	Volumes      Volumes
	Replicates   int
	StartingWell int

	ThermocyclerLabware string
	TubeRackLabware     string
	TiprackLabware      string
	TemperatureSlot     int
	TiprackSlot         int
	Pipette             string
	Mount               string
	Rates               protocol.Rates

	Author   string
	APILevel string
}

// NewSettings pulls assembly settings out of the app config
func NewSettings(c *config.Config) Settings {
	return Settings{
		Volumes: Volumes{
			Total:  c.Assembly.TotalVolume,
			Part:   c.Assembly.PartVolume,
			Enzyme: c.Assembly.EnzymeVolume,
			Ligase: c.Assembly.LigaseVolume,
			Buffer: c.Assembly.BufferVolume,
		},
		Replicates:          c.Assembly.Replicates,
		StartingWell:        c.Assembly.StartingWell,
		ThermocyclerLabware: c.Labware.Thermocycler,
		TubeRackLabware:     c.Labware.TubeRack,
		TiprackLabware:      c.Labware.TiprackSmall,
		TemperatureSlot:     c.Deck.TemperatureModule,
		TiprackSlot:         c.Deck.TiprackSmall,
		Pipette:             c.Pipettes.Small,
		Mount:               c.Pipettes.SmallMount,
		Rates:               protocol.Rates{Aspirate: c.Rates.Aspirate, Dispense: c.Rates.Dispense},
		Author:              c.Author,
		APILevel:            c.APILevel,
	}
}

func (s Settings) validate() error {
	if s.Replicates < 1 {
		return fmt.Errorf("replicates must be at least 1, got %d", s.Replicates)
	}
	if s.StartingWell < 0 || s.StartingWell >= labware.Plate96.Size() {
		return fmt.Errorf("starting well %d is outside the thermocycler plate", s.StartingWell)
	}
	if s.Volumes.Part <= 0 || s.Volumes.Total <= 0 {
		return fmt.Errorf("part and total volumes must be positive")
	}
	return nil
}

// reactions expands each combination into one reaction per replicate
func reactions(combos [][]string, enzyme string, s Settings) ([]Reaction, error) {
	var out []Reaction
	for _, combo := range combos {
		water, err := s.Volumes.Water(len(combo))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(combo, "-"), err)
		}
		for r := 1; r <= s.Replicates; r++ {
			out = append(out, Reaction{Parts: combo, Enzyme: enzyme, Water: water, Replicate: r})
		}
	}
	return out, nil
}

// checkWells fails if there are more reactions than wells after the starting well
func checkWells(n int, s Settings) error {
	available := labware.Plate96.Size() - s.StartingWell
	if n > available {
		return fmt.Errorf("%w: %d reactions (combinations x %d replicates) but only %d thermocycler wells from well %d",
			labware.ErrFull, n, s.Replicates, available, s.StartingWell)
	}
	return nil
}

// checkReserved fails if a part shares a name with a shared reagent
func checkReserved(parts []string, reagents ...string) error {
	for _, p := range parts {
		for _, r := range reagents {
			if p == r {
				return fmt.Errorf("part %s has the same name as a reagent", p)
			}
		}
	}
	return nil
}

// Generate plans a design and builds its protocol
func Generate(p Planner, s Settings) (*protocol.Protocol, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	plan, err := p.Plan(s)
	if err != nil {
		return nil, err
	}
	return Build(plan, s)
}

// Build places a plan's reagents and reactions and returns the protocol:
// cool the modules, mix every reaction, run the digestion-ligation cycles
func Build(plan *Plan, s Settings) (*protocol.Protocol, error) {
	tubes, err := labware.NewAllocator(tubeRack, labware.Block24, 0)
	if err != nil {
		return nil, err
	}
	wells, err := labware.NewAllocator(thermocyclerPlate, labware.Plate96, s.StartingWell)
	if err != nil {
		return nil, err
	}
	if err := checkWells(len(plan.Reactions), s); err != nil {
		return nil, err
	}

	b := protocol.NewBuilder(protocol.Metadata{
		ID:          uuid.New().String(),
		Name:        plan.Name,
		Author:      s.Author,
		Description: plan.Description,
		APILevel:    s.APILevel,
	}, s.Rates)

	b.LoadModule(temperatureModule, "temperature module", s.TemperatureSlot)
	b.LoadLabwareOn(tubeRack, s.TubeRackLabware, temperatureModule)
	b.LoadModule(thermocycler, "thermocycler module", 0)
	b.LoadLabwareOn(thermocyclerPlate, s.ThermocyclerLabware, thermocycler)
	b.LoadLabware(tiprack, s.TiprackLabware, s.TiprackSlot)
	b.LoadInstrument(pipette, s.Pipette, s.Mount, tiprack)

	for _, reagent := range plan.Reagents {
		well, err := tubes.Assign(reagent)
		if err != nil {
			return nil, fmt.Errorf("too many reagents for the tube rack: %w", err)
		}
		b.Place(tubeRack, well, reagent)
	}
	tube := func(name string) (protocol.Location, error) {
		well, err := tubes.MustHave(name)
		return protocol.Location{Labware: tubeRack, Well: well}, err
	}

	b.SetTemperature(temperatureModule, coldHold)
	b.OpenLid(thermocycler)
	b.SetBlockTemperature(thermocycler, coldHold)

	// reactions making the same construct still get a well each
	for i, r := range plan.Reactions {
		well, err := wells.Assign("reaction_" + strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		b.Place(thermocyclerPlate, well, r.Name())
		dest := protocol.Location{Labware: thermocyclerPlate, Well: well}

		// master mix, then each part
		type addition struct {
			reagent string
			volume  float64
			mix     bool
		}
		additions := []addition{
			{Water, r.Water, false},
			{Buffer, s.Volumes.Buffer, true},
			{Ligase, s.Volumes.Ligase, true},
			{r.Enzyme, s.Volumes.Enzyme, true},
		}
		for _, part := range r.Parts {
			additions = append(additions, addition{part, s.Volumes.Part, true})
		}

		for _, add := range additions {
			src, err := tube(add.reagent)
			if err != nil {
				return nil, err
			}
			t := protocol.Transfer{Pipette: pipette, Volume: add.volume, Source: src, Dest: dest}
			if add.mix {
				t.MixBefore = add.volume
			}
			b.Transfer(t)
		}
	}

	b.Comment("Take out the reagents since the temperature module will be turned off")
	b.CloseLid(thermocycler)
	b.SetLidTemperature(thermocycler, lidTemperature)
	b.Deactivate(temperatureModule)
	b.ExecuteProfile(thermocycler, digestLigate, digestLigateCycles, blockMaxVolume)
	b.ExecuteProfile(thermocycler, denature, 1, blockMaxVolume)
	b.SetBlockTemperature(thermocycler, coldHold)

	return b.Protocol()
}
