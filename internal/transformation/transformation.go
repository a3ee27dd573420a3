// Package transformation builds heat shock transformation protocols of
// DNAs into chemically competent cells on the thermocycler
package transformation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/jjtimmons/pudu/config"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
	"go.uber.org/zap"
)

const (
	temperatureModule = "temperature_module"
	tubeRack          = "tube_rack"
	thermocycler      = "thermocycler"
	thermocyclerPlate = "thermocycler_plate"
	tiprackSmall      = "tiprack_small"
	tiprackLarge      = "tiprack_large"
	pipetteSmall      = "pipette_small"
	pipetteLarge      = "pipette_large"

	coldHold = 4
)

var (
	// ColdIncubation1, HeatShock and ColdIncubation2 run back to back
	// once the DNA is on the cells
	ColdIncubation1 = protocol.Step{Temperature: 4, HoldMinutes: 30}
	HeatShock       = protocol.Step{Temperature: 42, HoldMinutes: 1}
	ColdIncubation2 = protocol.Step{Temperature: 4, HoldMinutes: 2}

	// Recovery runs after the media is added
	Recovery = protocol.Step{Temperature: 37, HoldMinutes: 60}
)

// Settings are the volumes (uL), labware and instruments of a transformation
type Settings struct {
	DNAVolume    float64
	CellsVolume  float64
	CellsPerTube float64
	MediaVolume  float64
	MediaPerTube float64
	Replicates   int
	StartingWell int

	ThermocyclerLabware string
	TubeRackLabware     string
	TiprackSmallLabware string
	TiprackLargeLabware string
	TemperatureSlot     int
	TiprackSmallSlot    int
	TiprackLargeSlot    int

	SmallPipette string
	SmallMount   string
	LargePipette string
	LargeMount   string
	SmallMax     float64

	Rates    protocol.Rates
	Author   string
	APILevel string
}

// NewSettings pulls transformation settings out of the app config
func NewSettings(c *config.Config) Settings {
	return Settings{
		DNAVolume:           c.Transformation.DNAVolume,
		CellsVolume:         c.Transformation.CellsVolume,
		CellsPerTube:        c.Transformation.CellsPerTube,
		MediaVolume:         c.Transformation.MediaVolume,
		MediaPerTube:        c.Transformation.MediaPerTube,
		Replicates:          c.Transformation.Replicates,
		StartingWell:        c.Transformation.StartingWell,
		ThermocyclerLabware: c.Labware.Thermocycler,
		TubeRackLabware:     c.Labware.TubeRack,
		TiprackSmallLabware: c.Labware.TiprackSmall,
		TiprackLargeLabware: c.Labware.TiprackLarge,
		TemperatureSlot:     c.Deck.TemperatureModule,
		TiprackSmallSlot:    c.Deck.TiprackSmall,
		TiprackLargeSlot:    c.Deck.TiprackLarge,
		SmallPipette:        c.Pipettes.Small,
		SmallMount:          c.Pipettes.SmallMount,
		LargePipette:        c.Pipettes.Large,
		LargeMount:          c.Pipettes.LargeMount,
		SmallMax:            c.Pipettes.SmallMax,
		Rates:               protocol.Rates{Aspirate: c.Rates.Aspirate, Dispense: c.Rates.Dispense},
		Author:              c.Author,
		APILevel:            c.APILevel,
	}
}

// pipette returns the id of the pipette that moves a volume
func (s Settings) pipette(volume float64) string {
	if volume > s.SmallMax {
		return pipetteLarge
	}
	return pipetteSmall
}

// Tubes is the number of stock tubes needed to give every transformation
// its volume when each tube holds perTube
func Tubes(transformations int, perTransformation, perTube float64) (int, error) {
	if perTransformation <= 0 {
		return 0, fmt.Errorf("volume per transformation must be positive, got %v", perTransformation)
	}
	each := int(math.Floor(perTube / perTransformation))
	if each < 1 {
		return 0, fmt.Errorf("a %v uL tube can't supply a %v uL transformation", perTube, perTransformation)
	}
	return int(math.Ceil(float64(transformations) / float64(each))), nil
}

// ChemicalTransformation heat shocks each DNA, in replicate, into
// competent cells and recovers them in media
type ChemicalTransformation struct {
	DNAs []string

	// CompetentCells names the cell tubes, "competent_cells" if empty
	CompetentCells string

	// Media names the recovery media tubes, "media" if empty
	Media string
}

// Protocol builds the transformation protocol
func (t ChemicalTransformation) Protocol(s Settings) (*protocol.Protocol, error) {
	if len(t.DNAs) == 0 {
		return nil, fmt.Errorf("no DNAs to transform")
	}
	if s.Replicates < 1 {
		return nil, fmt.Errorf("replicates must be at least 1, got %d", s.Replicates)
	}
	if s.DNAVolume <= 0 || s.CellsVolume <= 0 || s.MediaVolume <= 0 {
		return nil, fmt.Errorf("DNA, cell and media volumes must be positive")
	}
	cells, media := t.CompetentCells, t.Media
	if cells == "" {
		cells = "competent_cells"
	}
	if media == "" {
		media = "media"
	}

	total := len(t.DNAs) * s.Replicates
	cellTubes, err := Tubes(total, s.CellsVolume, s.CellsPerTube)
	if err != nil {
		return nil, fmt.Errorf("competent cells: %w", err)
	}
	mediaTubes, err := Tubes(total, s.MediaVolume, s.MediaPerTube)
	if err != nil {
		return nil, fmt.Errorf("media: %w", err)
	}
	if n := len(t.DNAs) + cellTubes + mediaTubes; n > labware.Block24.Size() {
		return nil, fmt.Errorf("%w: %d DNAs, %d tubes of competent cells and %d tubes of media need %d tubes, the rack has %d",
			labware.ErrFull, len(t.DNAs), cellTubes, mediaTubes, n, labware.Block24.Size())
	}
	if available := labware.Plate96.Size() - s.StartingWell; total > available {
		return nil, fmt.Errorf("%w: %d transformations but %d thermocycler wells from well %d",
			labware.ErrFull, total, available, s.StartingWell)
	}

	zap.L().Debug("planned transformation",
		zap.Int("transformations", total),
		zap.Int("cellTubes", cellTubes),
		zap.Int("mediaTubes", mediaTubes))

	tubes, err := labware.NewAllocator(tubeRack, labware.Block24, 0)
	if err != nil {
		return nil, err
	}
	wells, err := labware.NewAllocator(thermocyclerPlate, labware.Plate96, s.StartingWell)
	if err != nil {
		return nil, err
	}

	b := protocol.NewBuilder(protocol.Metadata{
		ID:          uuid.New().String(),
		Name:        "Chemical Transformation",
		Author:      s.Author,
		Description: fmt.Sprintf("Heat shock transformation of %d DNAs in %d replicates", len(t.DNAs), s.Replicates),
		APILevel:    s.APILevel,
	}, s.Rates)

	b.LoadModule(temperatureModule, "temperature module", s.TemperatureSlot)
	b.LoadLabwareOn(tubeRack, s.TubeRackLabware, temperatureModule)
	b.LoadModule(thermocycler, "thermocycler module", 0)
	b.LoadLabwareOn(thermocyclerPlate, s.ThermocyclerLabware, thermocycler)
	b.LoadLabware(tiprackSmall, s.TiprackSmallLabware, s.TiprackSmallSlot)
	b.LoadLabware(tiprackLarge, s.TiprackLargeLabware, s.TiprackLargeSlot)
	b.LoadInstrument(pipetteSmall, s.SmallPipette, s.SmallMount, tiprackSmall)
	b.LoadInstrument(pipetteLarge, s.LargePipette, s.LargeMount, tiprackLarge)

	var names []string
	names = append(names, t.DNAs...)
	for i := 1; i <= cellTubes; i++ {
		names = append(names, cells+"_tube_"+strconv.Itoa(i))
	}
	for i := 1; i <= mediaTubes; i++ {
		names = append(names, media+"_tube_"+strconv.Itoa(i))
	}
	for _, name := range names {
		well, err := tubes.Assign(name)
		if err != nil {
			return nil, err
		}
		b.Place(tubeRack, well, name)
	}
	if tubes.Remaining() != labware.Block24.Size()-len(names) {
		return nil, fmt.Errorf("DNA names must be unique and not clash with the cell or media tubes")
	}
	tube := func(name string) protocol.Location {
		well, _ := tubes.MustHave(name)
		return protocol.Location{Labware: tubeRack, Well: well}
	}

	// replicate r of DNA d goes in well r*len(DNAs)+d
	dest := make([]protocol.Location, total)
	for r := 0; r < s.Replicates; r++ {
		for d, dna := range t.DNAs {
			well, err := wells.Assign(dna + "#" + strconv.Itoa(r+1))
			if err != nil {
				return nil, err
			}
			b.Place(thermocyclerPlate, well, dna)
			dest[r*len(t.DNAs)+d] = protocol.Location{Labware: thermocyclerPlate, Well: well}
		}
	}

	b.SetTemperature(temperatureModule, coldHold)
	b.OpenLid(thermocycler)
	b.SetBlockTemperature(thermocycler, coldHold)

	// competent cells, each tube feeding as many wells as it holds volume for
	perCellTube := int(math.Floor(s.CellsPerTube / s.CellsVolume))
	for i, d := range dest {
		source := tube(cells + "_tube_" + strconv.Itoa(i/perCellTube+1))
		b.Transfer(protocol.Transfer{
			Pipette:   s.pipette(s.CellsVolume),
			Volume:    s.CellsVolume,
			Source:    source,
			Dest:      d,
			MixBefore: math.Max(s.CellsVolume-5, 0),
		})
	}

	for i, d := range dest {
		dna := t.DNAs[i%len(t.DNAs)]
		b.Transfer(protocol.Transfer{
			Pipette:   s.pipette(s.DNAVolume),
			Volume:    s.DNAVolume,
			Source:    tube(dna),
			Dest:      d,
			MixBefore: s.DNAVolume,
		})
	}

	b.CloseLid(thermocycler)
	shockVolume := s.CellsVolume + s.DNAVolume
	b.ExecuteProfile(thermocycler, []protocol.Step{ColdIncubation1, HeatShock, ColdIncubation2}, 1, shockVolume)
	b.OpenLid(thermocycler)

	perMediaTube := int(math.Floor(s.MediaPerTube / s.MediaVolume))
	for i, d := range dest {
		source := tube(media + "_tube_" + strconv.Itoa(i/perMediaTube+1))
		b.Transfer(protocol.Transfer{
			Pipette:  s.pipette(s.MediaVolume),
			Volume:   s.MediaVolume,
			Source:   source,
			Dest:     d,
			MixAfter: math.Max(s.MediaVolume-5, 0),
		})
	}

	b.CloseLid(thermocycler)
	b.ExecuteProfile(thermocycler, []protocol.Step{Recovery}, 1, shockVolume+s.MediaVolume)

	return b.Protocol()
}
