package platesetup

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
)

// PlateSamples spreads each sample from its tube into the 4 wells of its
// sample group, with one tip per sample
type PlateSamples struct {
	Samples []string

	// TubeVolume is the volume in each sample tube, WellVolume what each
	// well receives (uL)
	TubeVolume float64
	WellVolume float64
}

// Protocol builds the plating protocol
func (ps PlateSamples) Protocol(s Settings) (*protocol.Protocol, error) {
	groups := labware.SampleGroups()
	if len(ps.Samples) == 0 {
		return nil, fmt.Errorf("no samples to plate")
	}
	if len(ps.Samples) > len(groups) {
		return nil, fmt.Errorf("%w: %d samples, at most %d fit on the plate", labware.ErrFull, len(ps.Samples), len(groups))
	}
	if err := positive("well volume", ps.WellVolume); err != nil {
		return nil, err
	}
	if need := ps.WellVolume * 4; need > ps.TubeVolume {
		return nil, fmt.Errorf("each sample needs %v uL for 4 wells but tubes hold %v uL", need, ps.TubeVolume)
	}

	tubes, err := labware.NewAllocator(tubeRack, labware.Block24, 0)
	if err != nil {
		return nil, err
	}

	b := protocol.NewBuilder(protocol.Metadata{
		ID:          uuid.New().String(),
		Name:        "Plate Samples",
		Author:      s.Author,
		Description: fmt.Sprintf("%d samples in quadruplicate on a 96 well plate", len(ps.Samples)),
		APILevel:    s.APILevel,
	}, s.Rates)
	deck(b, s)

	for i, sample := range ps.Samples {
		if _, err := tubes.MustHave(sample); err == nil {
			return nil, fmt.Errorf("sample %s is listed twice", sample)
		}
		tube, err := tubes.Assign(sample)
		if err != nil {
			return nil, err
		}
		b.Place(tubeRack, tube, sample)

		b.PickUpTip(pipette)
		for _, well := range groups[i] {
			b.Place(plate, well, sample)
			b.Transfer(protocol.Transfer{
				Pipette:   pipette,
				Volume:    ps.WellVolume,
				Source:    tubeAt(tube),
				Dest:      wellAt(well),
				MixBefore: ps.WellVolume,
				MixAfter:  ps.WellVolume / 2,
				ReuseTip:  true,
			})
		}
		b.DropTip(pipette)
	}

	return b.Protocol()
}
