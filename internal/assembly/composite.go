package assembly

import (
	"fmt"
	"strings"
)

// maxCompositeParts is the tube block less the enzyme, ligase, buffer and water
const maxCompositeParts = 20

// CompositeAssembly plans a Golden Gate reaction for each of an explicit
// list of composites, each an ordered list of parts
type CompositeAssembly struct {
	Composites [][]string

	// Enzyme is BsaI if empty
	Enzyme string
}

// Plan implements Planner
func (c CompositeAssembly) Plan(s Settings) (*Plan, error) {
	if len(c.Composites) == 0 {
		return nil, fmt.Errorf("no composites to plan")
	}
	enzyme := c.Enzyme
	if enzyme == "" {
		enzyme = "BsaI"
	}

	seen := make(map[string]bool)
	var parts []string
	for i, composite := range c.Composites {
		if len(composite) == 0 {
			return nil, fmt.Errorf("composite %d has no parts", i+1)
		}
		for _, p := range composite {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("composite %d has an empty part name", i+1)
			}
			if !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}
	if len(parts) > maxCompositeParts {
		return nil, fmt.Errorf("%d distinct parts, at most %d fit in the tube rack", len(parts), maxCompositeParts)
	}
	if err := checkReserved(parts, enzyme, Ligase, Buffer, Water); err != nil {
		return nil, err
	}

	rs, err := reactions(c.Composites, enzyme, s)
	if err != nil {
		return nil, err
	}
	if err := checkWells(len(rs), s); err != nil {
		return nil, err
	}

	return &Plan{
		Name:        "Golden Gate Assembly",
		Description: fmt.Sprintf("Golden Gate assembly of %d composites with %s", len(c.Composites), enzyme),
		Reagents:    append([]string{enzyme, Ligase, Buffer, Water}, parts...),
		Reactions:   rs,
	}, nil
}
