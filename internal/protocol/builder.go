package protocol

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTip is returned when a command breaks the pick-up/use/drop tip order
var ErrTip = errors.New("tip handling error")

// DefaultMixReps is the number of mix repetitions when a transfer doesn't set one
const DefaultMixReps = 3

// Rates are the flow rate multipliers used by transfers
type Rates struct {
	Aspirate float64
	Dispense float64
}

// Transfer moves one volume from a source to a destination with a
// single pipette. Unless ReuseTip is set a fresh tip is picked up before
// and dropped after
type Transfer struct {
	Pipette string
	Volume  float64
	Source  Location
	Dest    Location

	// mix volumes before aspirating (in the source) and after
	// dispensing (in the destination), zero for no mixing
	MixBefore float64
	MixAfter  float64
	MixReps   int

	// ReuseTip keeps the tip already on the pipette
	ReuseTip bool

	SkipBlowOut bool
	TouchTip    bool
}

// Builder accumulates commands and checks tip economy as it goes. The first
// error stops the builder and is returned by Protocol
type Builder struct {
	proto *Protocol
	rates Rates

	labware     map[string]bool
	modules     map[string]bool
	instruments map[string]bool
	holding     map[string]bool

	err error
}

// NewBuilder starts a protocol
func NewBuilder(meta Metadata, rates Rates) *Builder {
	return &Builder{
		proto: &Protocol{
			Metadata: meta,
			TipsUsed: make(map[string]int),
		},
		rates:       rates,
		labware:     make(map[string]bool),
		modules:     make(map[string]bool),
		instruments: make(map[string]bool),
		holding:     make(map[string]bool),
	}
}

// Err is the first error hit while building
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

func (b *Builder) add(c Command) {
	if b.err == nil {
		b.proto.Commands = append(b.proto.Commands, c)
	}
}

// LoadModule puts a hardware module on the deck. Slot is zero for modules
// with a fixed position (the thermocycler)
func (b *Builder) LoadModule(id, model string, slot int) {
	if b.modules[id] || b.labware[id] {
		b.fail("%s is already loaded", id)
		return
	}
	b.modules[id] = true
	b.add(Command{Kind: LoadModule, ID: id, Name: model, Slot: slot})
}

// LoadLabware puts labware in a deck slot
func (b *Builder) LoadLabware(id, loadName string, slot int) {
	if b.labware[id] || b.modules[id] {
		b.fail("%s is already loaded", id)
		return
	}
	b.labware[id] = true
	b.add(Command{Kind: LoadLabware, ID: id, Name: loadName, Slot: slot})
}

// LoadLabwareOn puts labware on a loaded module
func (b *Builder) LoadLabwareOn(id, loadName, module string) {
	if !b.modules[module] {
		b.fail("can't load %s on %s: module not loaded", id, module)
		return
	}
	if b.labware[id] || b.modules[id] {
		b.fail("%s is already loaded", id)
		return
	}
	b.labware[id] = true
	b.add(Command{Kind: LoadLabware, ID: id, Name: loadName, Module: module})
}

// LoadInstrument mounts a pipette that draws tips from the tip racks
func (b *Builder) LoadInstrument(id, model, mount string, tipRacks ...string) {
	for _, rack := range tipRacks {
		if !b.labware[rack] {
			b.fail("tip rack %s for %s is not loaded", rack, id)
			return
		}
	}
	if b.instruments[id] {
		b.fail("%s is already loaded", id)
		return
	}
	b.instruments[id] = true
	b.add(Command{Kind: LoadInstrument, ID: id, Name: model, Mount: mount, TipRacks: tipRacks})
}

func (b *Builder) module(k Kind, module string, c Command) {
	if !b.modules[module] {
		b.fail("%s on %s: module not loaded", k, module)
		return
	}
	c.Kind = k
	c.Module = module
	b.add(c)
}

// SetTemperature sets a temperature module
func (b *Builder) SetTemperature(module string, celsius float64) {
	b.module(SetTemperature, module, Command{Temperature: celsius})
}

// Deactivate turns off a module's temperature control
func (b *Builder) Deactivate(module string) {
	b.module(Deactivate, module, Command{})
}

// OpenLid opens a thermocycler lid
func (b *Builder) OpenLid(module string) {
	b.module(OpenLid, module, Command{})
}

// CloseLid closes a thermocycler lid
func (b *Builder) CloseLid(module string) {
	b.module(CloseLid, module, Command{})
}

// SetBlockTemperature sets a thermocycler block
func (b *Builder) SetBlockTemperature(module string, celsius float64) {
	b.module(SetBlockTemperature, module, Command{Temperature: celsius})
}

// SetLidTemperature sets a thermocycler lid
func (b *Builder) SetLidTemperature(module string, celsius float64) {
	b.module(SetLidTemperature, module, Command{Temperature: celsius})
}

// ExecuteProfile runs thermocycler steps for a number of repetitions
func (b *Builder) ExecuteProfile(module string, steps []Step, repetitions int, blockMaxVolume float64) {
	if len(steps) == 0 || repetitions < 1 {
		b.fail("profile on %s needs steps and at least one repetition", module)
		return
	}
	b.module(ExecuteProfile, module, Command{Steps: steps, Repetitions: repetitions, BlockMaxVolume: blockMaxVolume})
}

// Comment shows a message to the operator
func (b *Builder) Comment(msg string) {
	b.add(Command{Kind: Comment, Message: msg})
}

// Place records what a well holds
func (b *Builder) Place(labware, well, content string) {
	b.proto.Layout = append(b.proto.Layout, Placement{Labware: labware, Well: well, Content: content})
}

func (b *Builder) pipette(k Kind, pipette string, needTip bool) bool {
	if b.err != nil {
		return false
	}
	if !b.instruments[pipette] {
		b.fail("%s with %s: instrument not loaded", k, pipette)
		return false
	}
	if needTip && !b.holding[pipette] {
		b.fail("%w: %s with %s without a tip", ErrTip, k, pipette)
		return false
	}
	return true
}

func (b *Builder) location(loc Location) bool {
	if !b.labware[loc.Labware] {
		b.fail("labware %s is not loaded", loc.Labware)
		return false
	}
	return true
}

// PickUpTip takes the next tip from the pipette's tip racks
func (b *Builder) PickUpTip(pipette string) {
	if !b.pipette(PickUpTip, pipette, false) {
		return
	}
	if b.holding[pipette] {
		b.fail("%w: %s already has a tip", ErrTip, pipette)
		return
	}
	b.holding[pipette] = true
	b.proto.TipsUsed[pipette]++
	b.add(Command{Kind: PickUpTip, Pipette: pipette})
}

// DropTip discards the pipette's tip
func (b *Builder) DropTip(pipette string) {
	if !b.pipette(DropTip, pipette, true) {
		return
	}
	b.holding[pipette] = false
	b.add(Command{Kind: DropTip, Pipette: pipette})
}

// Aspirate draws volume from a location
func (b *Builder) Aspirate(pipette string, volume float64, loc Location, rate float64) {
	if !b.pipette(Aspirate, pipette, true) || !b.location(loc) {
		return
	}
	b.add(Command{Kind: Aspirate, Pipette: pipette, Volume: volume, Location: &loc, Rate: rate})
}

// Dispense pushes volume into a location
func (b *Builder) Dispense(pipette string, volume float64, loc Location, rate float64) {
	if !b.pipette(Dispense, pipette, true) || !b.location(loc) {
		return
	}
	b.add(Command{Kind: Dispense, Pipette: pipette, Volume: volume, Location: &loc, Rate: rate})
}

// Mix aspirates and dispenses volume in a location reps times
func (b *Builder) Mix(pipette string, reps int, volume float64, loc Location) {
	if !b.pipette(Mix, pipette, true) || !b.location(loc) {
		return
	}
	b.add(Command{Kind: Mix, Pipette: pipette, Repetitions: reps, Volume: volume, Location: &loc})
}

// BlowOut pushes any remaining liquid out of the tip where it is
func (b *Builder) BlowOut(pipette string) {
	if !b.pipette(BlowOut, pipette, true) {
		return
	}
	b.add(Command{Kind: BlowOut, Pipette: pipette})
}

// TouchTip touches the tip to the sides of the current well
func (b *Builder) TouchTip(pipette string) {
	if !b.pipette(TouchTip, pipette, true) {
		return
	}
	b.add(Command{Kind: TouchTip, Pipette: pipette})
}

// Transfer appends the commands for a single liquid transfer. Transfers of
// no volume are skipped
func (b *Builder) Transfer(t Transfer) {
	if t.Volume <= 0 {
		return
	}
	reps := t.MixReps
	if reps == 0 {
		reps = DefaultMixReps
	}

	if !t.ReuseTip {
		b.PickUpTip(t.Pipette)
	}
	if t.MixBefore > 0 {
		b.Mix(t.Pipette, reps, t.MixBefore, t.Source)
	}
	b.Aspirate(t.Pipette, t.Volume, t.Source, b.rates.Aspirate)
	b.Dispense(t.Pipette, t.Volume, t.Dest, b.rates.Dispense)
	if t.MixAfter > 0 {
		b.Mix(t.Pipette, reps, t.MixAfter, t.Dest)
	}
	if !t.SkipBlowOut {
		b.BlowOut(t.Pipette)
	}
	if t.TouchTip {
		b.TouchTip(t.Pipette)
	}
	if !t.ReuseTip {
		b.DropTip(t.Pipette)
	}
}

// Protocol returns the finished protocol. It fails if any command failed
// or a pipette still holds a tip
func (b *Builder) Protocol() (*Protocol, error) {
	if b.err != nil {
		return nil, b.err
	}

	var holding []string
	for p, h := range b.holding {
		if h {
			holding = append(holding, p)
		}
	}
	if len(holding) > 0 {
		sort.Strings(holding)
		return nil, fmt.Errorf("%w: %v still holding a tip at the end of the protocol", ErrTip, holding)
	}

	return b.proto, nil
}
