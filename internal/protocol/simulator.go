package protocol

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// tolerance for comparing pipetted volumes
const epsilon = 1e-9

// pipette models are named by their max volume, eg p20_single_gen2
var pipetteModel = regexp.MustCompile(`^p(\d+)_`)

// Simulator is a Robot that tracks the state of the deck: tips, liquid in
// tips, net volume moved in and out of every well, module temperatures and
// the thermocycler lid
type Simulator struct {
	// TipsUsed is the number of tips picked up per pipette
	TipsUsed map[string]int

	// Volumes is the net volume dispensed into (positive) or drawn
	// out of (negative) every well touched
	Volumes map[Location]float64

	// Temperatures is the last target temperature per module, absent
	// when the module is off
	Temperatures map[string]float64

	// LidOpen per thermocycler
	LidOpen map[string]bool

	// Profiles counts the profiles run per module
	Profiles map[string]int

	maxVolume map[string]float64
	holding   map[string]bool
	inTip     map[string]float64
	labware   map[string]bool
	modules   map[string]bool
}

// NewSimulator returns a simulator with an empty deck
func NewSimulator() *Simulator {
	return &Simulator{
		TipsUsed:     make(map[string]int),
		Volumes:      make(map[Location]float64),
		Temperatures: make(map[string]float64),
		LidOpen:      make(map[string]bool),
		Profiles:     make(map[string]int),
		maxVolume:    make(map[string]float64),
		holding:      make(map[string]bool),
		inTip:        make(map[string]float64),
		labware:      make(map[string]bool),
		modules:      make(map[string]bool),
	}
}

// Execute applies a command to the simulated deck
func (s *Simulator) Execute(_ context.Context, c Command) error {
	switch c.Kind {
	case LoadModule:
		s.modules[c.ID] = true
	case LoadLabware:
		if c.Module != "" && !s.modules[c.Module] {
			return fmt.Errorf("module %s not loaded", c.Module)
		}
		s.labware[c.ID] = true
	case LoadInstrument:
		m := pipetteModel.FindStringSubmatch(c.Name)
		if m == nil {
			return fmt.Errorf("unknown pipette model %s", c.Name)
		}
		maxVol, _ := strconv.ParseFloat(m[1], 64)
		s.maxVolume[c.ID] = maxVol

	case SetTemperature, SetBlockTemperature:
		if err := s.checkModule(c.Module); err != nil {
			return err
		}
		s.Temperatures[c.Module] = c.Temperature
	case SetLidTemperature:
		return s.checkModule(c.Module)
	case Deactivate:
		if err := s.checkModule(c.Module); err != nil {
			return err
		}
		delete(s.Temperatures, c.Module)
	case OpenLid, CloseLid:
		if err := s.checkModule(c.Module); err != nil {
			return err
		}
		s.LidOpen[c.Module] = c.Kind == OpenLid
	case ExecuteProfile:
		if err := s.checkModule(c.Module); err != nil {
			return err
		}
		if s.LidOpen[c.Module] {
			return fmt.Errorf("profile on %s with the lid open", c.Module)
		}
		s.Profiles[c.Module]++

	case PickUpTip:
		if err := s.checkPipette(c.Pipette); err != nil {
			return err
		}
		if s.holding[c.Pipette] {
			return fmt.Errorf("%w: %s already has a tip", ErrTip, c.Pipette)
		}
		s.holding[c.Pipette] = true
		s.TipsUsed[c.Pipette]++
	case DropTip:
		if err := s.checkTip(c.Pipette); err != nil {
			return err
		}
		s.holding[c.Pipette] = false
		s.inTip[c.Pipette] = 0
	case Aspirate:
		if err := s.checkLiquid(c); err != nil {
			return err
		}
		if s.inTip[c.Pipette]+c.Volume > s.maxVolume[c.Pipette]+epsilon {
			return fmt.Errorf("%s can't hold %v uL (max %v uL)", c.Pipette, s.inTip[c.Pipette]+c.Volume, s.maxVolume[c.Pipette])
		}
		s.inTip[c.Pipette] += c.Volume
		s.Volumes[*c.Location] -= c.Volume
	case Dispense:
		if err := s.checkLiquid(c); err != nil {
			return err
		}
		if c.Volume > s.inTip[c.Pipette]+epsilon {
			return fmt.Errorf("%s dispensing %v uL with %v uL in the tip", c.Pipette, c.Volume, s.inTip[c.Pipette])
		}
		s.inTip[c.Pipette] -= c.Volume
		s.Volumes[*c.Location] += c.Volume
	case Mix:
		if err := s.checkLiquid(c); err != nil {
			return err
		}
		if c.Volume > s.maxVolume[c.Pipette]+epsilon {
			return fmt.Errorf("%s can't mix %v uL (max %v uL)", c.Pipette, c.Volume, s.maxVolume[c.Pipette])
		}
	case BlowOut:
		if err := s.checkTip(c.Pipette); err != nil {
			return err
		}
		s.inTip[c.Pipette] = 0
	case TouchTip:
		return s.checkTip(c.Pipette)

	case Comment:
	default:
		return fmt.Errorf("unknown command %q", c.Kind)
	}
	return nil
}

// Holding reports whether any pipette still has a tip on
func (s *Simulator) Holding() bool {
	for _, h := range s.holding {
		if h {
			return true
		}
	}
	return false
}

func (s *Simulator) checkModule(module string) error {
	if !s.modules[module] {
		return fmt.Errorf("module %s not loaded", module)
	}
	return nil
}

func (s *Simulator) checkPipette(pipette string) error {
	if _, ok := s.maxVolume[pipette]; !ok {
		return fmt.Errorf("instrument %s not loaded", pipette)
	}
	return nil
}

func (s *Simulator) checkTip(pipette string) error {
	if err := s.checkPipette(pipette); err != nil {
		return err
	}
	if !s.holding[pipette] {
		return fmt.Errorf("%w: %s has no tip", ErrTip, pipette)
	}
	return nil
}

func (s *Simulator) checkLiquid(c Command) error {
	if err := s.checkTip(c.Pipette); err != nil {
		return err
	}
	if c.Location == nil || !s.labware[c.Location.Labware] {
		return fmt.Errorf("%s to a location that isn't loaded", c.Kind)
	}
	return nil
}
