package assembly

import (
	"fmt"

	"github.com/jjtimmons/pudu/internal/labware"
)

// Domestication plans moving each part into an acceptor backbone, one
// reaction of part and backbone per part
type Domestication struct {
	Parts    []string
	Backbone string

	// Enzyme cuts the parts out of their source vectors, BsaI if empty
	Enzyme string
}

// Plan implements Planner
func (d Domestication) Plan(s Settings) (*Plan, error) {
	if d.Backbone == "" {
		return nil, fmt.Errorf("domestication needs an acceptor backbone")
	}
	if len(d.Parts) == 0 {
		return nil, fmt.Errorf("no parts to domesticate")
	}
	enzyme := d.Enzyme
	if enzyme == "" {
		enzyme = "BsaI"
	}

	seen := map[string]bool{d.Backbone: true}
	var combos [][]string
	for _, p := range d.Parts {
		if seen[p] {
			return nil, fmt.Errorf("part %s is listed twice or is the backbone", p)
		}
		seen[p] = true
		combos = append(combos, []string{p, d.Backbone})
	}

	reagents := append([]string{Water, Ligase, Buffer, enzyme}, d.Parts...)
	reagents = append(reagents, d.Backbone)
	if len(reagents) > labware.Block24.Size() {
		return nil, fmt.Errorf("%w: %d parts and the backbone need %d tubes, the tube rack has %d",
			labware.ErrFull, len(d.Parts), len(reagents), labware.Block24.Size())
	}
	if err := checkReserved(reagents[4:], reagents[:4]...); err != nil {
		return nil, err
	}

	rs, err := reactions(combos, enzyme, s)
	if err != nil {
		return nil, err
	}
	if err := checkWells(len(rs), s); err != nil {
		return nil, err
	}

	return &Plan{
		Name:        "Domestication",
		Description: fmt.Sprintf("Domestication of %d parts into %s", len(d.Parts), d.Backbone),
		Reagents:    reagents,
		Reactions:   rs,
	}, nil
}
