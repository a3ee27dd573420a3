// Package platesetup builds protocols that fill 96 well plates from
// sample tubes, either spread in quadruplicate or as an inducer gradient
package platesetup

import (
	"fmt"

	"github.com/jjtimmons/pudu/config"
	"github.com/jjtimmons/pudu/internal/protocol"
)

const (
	temperatureModule = "temperature_module"
	tubeRack          = "tube_rack"
	plate             = "plate"
	tiprack           = "tiprack"
	pipette           = "pipette"
)

// Settings are the labware and instruments of plate setup protocols
type Settings struct {
	PlateLabware    string
	PlateSlot       int
	TubeRackLabware string
	TubeRackSlot    int
	TiprackLabware  string
	TiprackSlot     int
	Pipette         string
	Mount           string

	// UseTemperatureModule puts the tube rack on a temperature module in
	// the tube rack's slot
	UseTemperatureModule bool

	Rates    protocol.Rates
	Author   string
	APILevel string
}

// NewSettings pulls plate setup settings out of the app config
func NewSettings(c *config.Config) Settings {
	return Settings{
		PlateLabware:    c.Labware.Plate,
		PlateSlot:       c.Deck.Plate,
		TubeRackLabware: c.Labware.TubeRack,
		TubeRackSlot:    c.Deck.TubeRack,
		TiprackLabware:  c.Labware.TiprackLarge,
		TiprackSlot:     c.Deck.TiprackLarge,
		Pipette:         c.Pipettes.Large,
		Mount:           c.Pipettes.LargeMount,
		Rates:           protocol.Rates{Aspirate: c.Rates.Aspirate, Dispense: c.Rates.Dispense},
		Author:          c.Author,
		APILevel:        c.APILevel,
	}
}

// deck loads the tip rack, pipette, plate and tube rack
func deck(b *protocol.Builder, s Settings) {
	b.LoadLabware(tiprack, s.TiprackLabware, s.TiprackSlot)
	b.LoadInstrument(pipette, s.Pipette, s.Mount, tiprack)
	b.LoadLabware(plate, s.PlateLabware, s.PlateSlot)
	if s.UseTemperatureModule {
		b.LoadModule(temperatureModule, "temperature module", s.TubeRackSlot)
		b.LoadLabwareOn(tubeRack, s.TubeRackLabware, temperatureModule)
	} else {
		b.LoadLabware(tubeRack, s.TubeRackLabware, s.TubeRackSlot)
	}
}

func tubeAt(well string) protocol.Location {
	return protocol.Location{Labware: tubeRack, Well: well}
}

func wellAt(well string) protocol.Location {
	return protocol.Location{Labware: plate, Well: well}
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, v)
	}
	return nil
}
