// Package calibration builds fluorescence and OD600 calibration plates:
// 1:2 serial dilutions of calibrants along the rows of a 96 well plate
package calibration

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jjtimmons/pudu/config"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
	"go.uber.org/zap"
)

const (
	temperatureModule = "temperature_module"
	tubeRack          = "tube_rack"
	falconRack        = "falcon_rack"
	plate             = "plate"
	tiprack           = "tiprack"
	pipette           = "pipette"
)

// volumes (uL) and mixing of the iGEM calibration protocol
const (
	diluentVolume   = 100.0
	calibrantVolume = 200.0
	mixVolume       = 200.0
	mixReps         = 4
)

// Calibrant is a calibration standard serially diluted along its rows
type Calibrant struct {
	Name string
	Tube string
	Rows []string
}

// Diluent fills columns 2-12 of rows, each row from its own tube or, with
// falcon tubes, all rows from one falcon
type Diluent struct {
	Name   string
	Tubes  map[string]string
	Falcon string
}

// Layout is where the calibrants and diluents go
type Layout struct {
	Name        string
	Description string
	Calibrants  []Calibrant
	Diluents    []Diluent
}

var (
	// GFP is fluorescein for GFP and microspheres for OD600
	GFP = Layout{
		Name:        "iGEM GFP OD600 calibration",
		Description: "Serial dilutions of fluorescein and microspheres for calibration",
		Calibrants: []Calibrant{
			{Name: "fluorescein_1x", Tube: "A1", Rows: []string{"A", "B"}},
			{Name: "microspheres_1x", Tube: "A2", Rows: []string{"C", "D"}},
		},
		Diluents: []Diluent{
			{Name: "pbs", Tubes: map[string]string{"A": "A3", "B": "A4"}, Falcon: "A1"},
			{Name: "water", Tubes: map[string]string{"C": "A5", "D": "A6"}, Falcon: "A2"},
		},
	}

	// RGB is fluorescein, sulforhodamine 101 and cascade blue for
	// fluorescence and microspheres for OD600
	RGB = Layout{
		Name:        "iGEM RGB OD600 calibration",
		Description: "Serial dilutions of fluorescein, sulforhodamine 101, cascade blue and microspheres for calibration",
		Calibrants: []Calibrant{
			{Name: "fluorescein_1x", Tube: "A2", Rows: []string{"A", "B"}},
			{Name: "sulforhodamine_1x", Tube: "A1", Rows: []string{"C", "D"}},
			{Name: "cascade_blue_1x", Tube: "A3", Rows: []string{"E", "F"}},
			{Name: "microspheres_1x", Tube: "A4", Rows: []string{"G", "H"}},
		},
		Diluents: []Diluent{
			{Name: "pbs", Tubes: map[string]string{"A": "B1", "B": "B2", "C": "B3", "D": "B4"}, Falcon: "A1"},
			{Name: "water", Tubes: map[string]string{"E": "C1", "F": "C2", "G": "C3", "H": "C4"}, Falcon: "A2"},
		},
	}
)

// Settings are the labware and instruments of calibration protocols
type Settings struct {
	PlateLabware      string
	PlateSlot         int
	TubeRackLabware   string
	TubeRackSlot      int
	FalconRackLabware string
	FalconRackSlot    int
	TiprackLabware    string
	TiprackSlot       int
	Pipette           string
	Mount             string

	UseTemperatureModule bool
	UseFalconTubes       bool

	Rates    protocol.Rates
	Author   string
	APILevel string
}

// NewSettings pulls calibration settings out of the app config. The tube
// rack sits on the temperature module
func NewSettings(c *config.Config) Settings {
	return Settings{
		PlateLabware:         c.Labware.Plate,
		PlateSlot:            c.Deck.Plate,
		TubeRackLabware:      c.Labware.TubeRack,
		TubeRackSlot:         c.Deck.TemperatureModule,
		FalconRackLabware:    c.Labware.FalconRack,
		FalconRackSlot:       c.Deck.FalconRack,
		TiprackLabware:       c.Labware.TiprackLarge,
		TiprackSlot:          c.Deck.TiprackLarge,
		Pipette:              c.Pipettes.Large,
		Mount:                c.Pipettes.LargeMount,
		UseTemperatureModule: true,
		Rates:                protocol.Rates{Aspirate: c.Rates.Aspirate, Dispense: c.Rates.Dispense},
		Author:               c.Author,
		APILevel:             c.APILevel,
	}
}

// rows returns the row letters of a diluent in plate order
func (d Diluent) rows() []string {
	rows := make([]string, 0, len(d.Tubes))
	for r := range d.Tubes {
		rows = append(rows, r)
	}
	sort.Strings(rows)
	return rows
}

// validate checks that no two things share a tube or a row
func (l Layout) validate() error {
	tubes := make(map[string]string)
	rows := make(map[string]string)
	claim := func(m map[string]string, key, by string) error {
		if other, ok := m[key]; ok {
			return fmt.Errorf("%s: %s is used by both %s and %s", l.Name, key, other, by)
		}
		m[key] = by
		return nil
	}

	for _, c := range l.Calibrants {
		if err := claim(tubes, c.Tube, c.Name); err != nil {
			return err
		}
		for _, r := range c.Rows {
			if _, err := labware.RowIndex(r); err != nil {
				return err
			}
			if err := claim(rows, r, c.Name); err != nil {
				return err
			}
		}
	}

	diluted := make(map[string]bool)
	for _, d := range l.Diluents {
		for _, r := range d.rows() {
			if err := claim(tubes, d.Tubes[r], d.Name); err != nil {
				return err
			}
			diluted[r] = true
		}
	}
	for r, by := range rows {
		if !diluted[r] {
			return fmt.Errorf("%s: row %s of %s has no diluent", l.Name, r, by)
		}
	}
	return nil
}

// Protocol builds the calibration plate protocol for a layout
func Protocol(l Layout, s Settings) (*protocol.Protocol, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}

	b := protocol.NewBuilder(protocol.Metadata{
		ID:          uuid.New().String(),
		Name:        l.Name,
		Author:      s.Author,
		Description: l.Description,
		APILevel:    s.APILevel,
	}, s.Rates)

	b.LoadLabware(tiprack, s.TiprackLabware, s.TiprackSlot)
	b.LoadInstrument(pipette, s.Pipette, s.Mount, tiprack)
	b.LoadLabware(plate, s.PlateLabware, s.PlateSlot)
	if s.UseTemperatureModule {
		b.LoadModule(temperatureModule, "temperature module", s.TubeRackSlot)
		b.LoadLabwareOn(tubeRack, s.TubeRackLabware, temperatureModule)
	} else {
		b.LoadLabware(tubeRack, s.TubeRackLabware, s.TubeRackSlot)
	}
	if s.UseFalconTubes {
		b.LoadLabware(falconRack, s.FalconRackLabware, s.FalconRackSlot)
	}

	for _, c := range l.Calibrants {
		b.Place(tubeRack, c.Tube, c.Name)
	}

	// diluent source of every row
	sources := make(map[string]protocol.Location)
	for _, d := range l.Diluents {
		if s.UseFalconTubes {
			b.Place(falconRack, d.Falcon, d.Name)
		}
		for i, r := range d.rows() {
			if s.UseFalconTubes {
				sources[r] = protocol.Location{Labware: falconRack, Well: d.Falcon}
				continue
			}
			b.Place(tubeRack, d.Tubes[r], fmt.Sprintf("%s_%d", d.Name, i+1))
			sources[r] = protocol.Location{Labware: tubeRack, Well: d.Tubes[r]}
		}
	}

	for _, d := range l.Diluents {
		b.PickUpTip(pipette)
		for _, r := range d.rows() {
			row, err := plateRow(r)
			if err != nil {
				return nil, err
			}
			for _, well := range row[1:] {
				b.Transfer(protocol.Transfer{
					Pipette:  pipette,
					Volume:   diluentVolume,
					Source:   sources[r],
					Dest:     protocol.Location{Labware: plate, Well: well},
					ReuseTip: true,
				})
			}
		}
		b.DropTip(pipette)
	}

	for _, c := range l.Calibrants {
		for _, r := range c.Rows {
			row, err := plateRow(r)
			if err != nil {
				return nil, err
			}
			b.Place(plate, row[0], c.Name)
			b.Transfer(protocol.Transfer{
				Pipette:   pipette,
				Volume:    calibrantVolume,
				Source:    protocol.Location{Labware: tubeRack, Well: c.Tube},
				Dest:      protocol.Location{Labware: plate, Well: row[0]},
				MixBefore: mixVolume,
				MixReps:   mixReps,
			})
		}
	}

	for _, c := range l.Calibrants {
		for _, r := range c.Rows {
			row, _ := plateRow(r)
			b.PickUpTip(pipette)
			for i := 0; i+1 < len(row); i++ {
				b.Place(plate, row[i+1], fmt.Sprintf("%s 1:%d", c.Name, 1<<uint(i+1)))
				b.Transfer(protocol.Transfer{
					Pipette:   pipette,
					Volume:    diluentVolume,
					Source:    protocol.Location{Labware: plate, Well: row[i]},
					Dest:      protocol.Location{Labware: plate, Well: row[i+1]},
					MixBefore: mixVolume,
					MixReps:   mixReps,
					ReuseTip:  true,
				})
			}
			b.DropTip(pipette)
		}
	}

	zap.L().Debug("built calibration", zap.String("layout", l.Name), zap.Bool("falcon", s.UseFalconTubes))
	return b.Protocol()
}

func plateRow(letter string) ([]string, error) {
	r, err := labware.RowIndex(letter)
	if err != nil {
		return nil, err
	}
	if r >= labware.Plate96.Rows {
		return nil, fmt.Errorf("row %s is off the plate", letter)
	}
	return labware.Plate96.Row(r), nil
}
