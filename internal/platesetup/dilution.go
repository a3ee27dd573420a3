package platesetup

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
	"go.uber.org/zap"
)

// defaults for an inducer gradient (uL)
const (
	DefaultInitialVolume  = 50.0
	DefaultDilutionVolume = 20.0
	DefaultSteps          = 10
	DefaultReplicates     = 3
	DefaultWellVolume     = 200.0
	DefaultTubeVolume     = 1200.0

	maxSteps = 11
)

// PlateSupplementedSamples lays an inducer gradient along rows of a plate.
// Each replicate row gets its own sample tube. Column 1 holds the initial
// mix of sample and inducer that is serially diluted into the sample
// already in the next columns
type PlateSupplementedSamples struct {
	Sample  string
	Inducer string

	InitialSampleVolume  float64
	InitialInducerVolume float64
	DilutionVolume       float64
	Steps                int
	Replicates           int
	StartingRow          string

	// WellVolume of sample in each dilution well and TubeVolume in each
	// sample tube
	WellVolume float64
	TubeVolume float64
}

// Protocol builds the serial dilution protocol
func (p PlateSupplementedSamples) Protocol(s Settings) (*protocol.Protocol, error) {
	if p.Sample == "" || p.Inducer == "" || p.Sample == p.Inducer {
		return nil, fmt.Errorf("a sample and a different inducer are needed, got %q and %q", p.Sample, p.Inducer)
	}
	if p.Steps < 1 || p.Steps > maxSteps {
		return nil, fmt.Errorf("dilution steps must be between 1 and %d, got %d", maxSteps, p.Steps)
	}
	if p.Replicates < 1 {
		return nil, fmt.Errorf("replicates must be at least 1, got %d", p.Replicates)
	}
	for name, v := range map[string]float64{
		"initial sample volume":  p.InitialSampleVolume,
		"initial inducer volume": p.InitialInducerVolume,
		"dilution volume":        p.DilutionVolume,
		"well volume":            p.WellVolume,
	} {
		if err := positive(name, v); err != nil {
			return nil, err
		}
	}
	startRow, err := labware.RowIndex(p.StartingRow)
	if err != nil {
		return nil, err
	}
	if startRow+p.Replicates > labware.Plate96.Rows {
		return nil, fmt.Errorf("%w: %d replicate rows from row %s don't fit on the plate", labware.ErrFull, p.Replicates, p.StartingRow)
	}
	if p.Replicates < 3 {
		zap.L().Warn("fewer than 3 replicates is too few for statistical analysis", zap.Int("replicates", p.Replicates))
	}
	perTube := p.WellVolume*float64(p.Steps) + p.InitialSampleVolume
	if p.TubeVolume > 0 && perTube > p.TubeVolume {
		zap.L().Warn("each replicate row needs more sample than a tube holds",
			zap.Float64("needed", perTube),
			zap.Float64("tube", p.TubeVolume))
	}

	tubes, err := labware.NewAllocator(tubeRack, labware.Block24, 0)
	if err != nil {
		return nil, err
	}

	b := protocol.NewBuilder(protocol.Metadata{
		ID:          uuid.New().String(),
		Name:        "Plate Supplemented Samples",
		Author:      s.Author,
		Description: fmt.Sprintf("%d step serial dilution of %s into %s in %d replicates", p.Steps, p.Inducer, p.Sample, p.Replicates),
		APILevel:    s.APILevel,
	}, s.Rates)
	deck(b, s)

	inducerWell, err := tubes.Assign(p.Inducer)
	if err != nil {
		return nil, err
	}
	b.Place(tubeRack, inducerWell, p.Inducer)

	// the inducer is diluted by this at every step
	factor := (p.WellVolume + p.DilutionVolume) / p.DilutionVolume

	for r := 0; r < p.Replicates; r++ {
		name := p.Sample + "_replicate_" + strconv.Itoa(r+1)
		sampleWell, err := tubes.Assign(name)
		if err != nil {
			return nil, err
		}
		b.Place(tubeRack, sampleWell, name)
		row := labware.Plate96.Row(startRow + r)

		// sample into the dilution wells
		b.PickUpTip(pipette)
		for c := 1; c <= p.Steps; c++ {
			b.Transfer(protocol.Transfer{
				Pipette:  pipette,
				Volume:   p.WellVolume,
				Source:   tubeAt(sampleWell),
				Dest:     wellAt(row[c]),
				ReuseTip: true,
			})
		}
		b.DropTip(pipette)

		// initial mix
		initial := p.InitialSampleVolume + p.InitialInducerVolume
		b.Place(plate, row[0], fmt.Sprintf("%s + %s", p.Sample, p.Inducer))
		b.Transfer(protocol.Transfer{
			Pipette: pipette,
			Volume:  p.InitialSampleVolume,
			Source:  tubeAt(sampleWell),
			Dest:    wellAt(row[0]),
		})
		b.Transfer(protocol.Transfer{
			Pipette:  pipette,
			Volume:   p.InitialInducerVolume,
			Source:   tubeAt(inducerWell),
			Dest:     wellAt(row[0]),
			MixAfter: initial / 2,
		})

		// serial dilution along the row
		b.PickUpTip(pipette)
		source := initial
		for c := 1; c <= p.Steps; c++ {
			b.Place(plate, row[c], fmt.Sprintf("%s + %s 1:%.4g", p.Sample, p.Inducer, math.Pow(factor, float64(c))))
			b.Transfer(protocol.Transfer{
				Pipette:   pipette,
				Volume:    p.DilutionVolume,
				Source:    wellAt(row[c-1]),
				Dest:      wellAt(row[c]),
				MixBefore: source / 2,
				ReuseTip:  true,
			})
			source = p.WellVolume + p.DilutionVolume
		}
		b.DropTip(pipette)
	}

	return b.Protocol()
}
