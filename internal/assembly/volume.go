package assembly

import (
	"errors"
	"fmt"
	"math"
)

// ErrVolume is returned when the parts and reagents leave too little room
// for water in a reaction
var ErrVolume = errors.New("not enough water volume")

// minWater is the smallest water volume the robot can reliably pipette (uL)
const minWater = 1.0

// Volumes of an assembly reaction (uL)
type Volumes struct {
	Total  float64
	Part   float64
	Enzyme float64
	Ligase float64
	Buffer float64
}

// Reagents is the volume of enzyme, ligase and buffer in every reaction
func (v Volumes) Reagents() float64 {
	return v.Enzyme + v.Ligase + v.Buffer
}

// Water is the water needed to top a reaction with nParts parts up to its
// total volume. Exactly no water is fine, between 0 and 1 uL is not
func (v Volumes) Water(nParts int) (float64, error) {
	w := v.Total - (v.Reagents() + v.Part*float64(nParts))
	if math.Abs(w) < 1e-9 {
		return 0, nil
	}
	if w < minWater {
		return 0, fmt.Errorf("%w: %d parts leave %.2f uL of water in a %.2f uL reaction", ErrVolume, nParts, w, v.Total)
	}
	return w, nil
}
