// Package protocol is for building, checking and replaying the ordered list
// of robot commands that make up a liquid-handling protocol
package protocol

// Kind is the type of a robot command
type Kind string

const (
	// deck setup
	LoadModule     Kind = "loadModule"
	LoadLabware    Kind = "loadLabware"
	LoadInstrument Kind = "loadInstrument"

	// temperature and thermocycler modules
	SetTemperature      Kind = "setTemperature"
	Deactivate          Kind = "deactivate"
	OpenLid             Kind = "openLid"
	CloseLid            Kind = "closeLid"
	SetBlockTemperature Kind = "setBlockTemperature"
	SetLidTemperature   Kind = "setLidTemperature"
	ExecuteProfile      Kind = "executeProfile"

	// pipetting
	PickUpTip Kind = "pickUpTip"
	Aspirate  Kind = "aspirate"
	Dispense  Kind = "dispense"
	Mix       Kind = "mix"
	BlowOut   Kind = "blowOut"
	TouchTip  Kind = "touchTip"
	DropTip   Kind = "dropTip"

	Comment Kind = "comment"
)

// Location is a well in a loaded labware
type Location struct {
	Labware string `json:"labware"`
	Well    string `json:"well"`
}

// Step is a single hold of a thermocycler profile
type Step struct {
	Temperature float64 `json:"temperature"`
	HoldMinutes float64 `json:"hold_time_minutes"`
}

// Command is one operation sent to the robot. Only the fields relevant to
// its Kind are set
type Command struct {
	Kind Kind `json:"command"`

	// ID of the module, labware or instrument being loaded
	ID string `json:"id,omitempty"`

	// Name is the load name or model of what's being loaded
	Name string `json:"name,omitempty"`

	// Slot is the deck slot, zero for modules with a fixed position
	Slot int `json:"slot,omitempty"`

	// Module is the module a command targets, or hosts loaded labware
	Module string `json:"module,omitempty"`

	Mount    string   `json:"mount,omitempty"`
	TipRacks []string `json:"tipRacks,omitempty"`

	Pipette     string    `json:"pipette,omitempty"`
	Volume      float64   `json:"volume,omitempty"`
	Rate        float64   `json:"rate,omitempty"`
	Repetitions int       `json:"repetitions,omitempty"`
	Location    *Location `json:"location,omitempty"`

	Temperature    float64 `json:"temperature,omitempty"`
	Steps          []Step  `json:"steps,omitempty"`
	BlockMaxVolume float64 `json:"blockMaxVolume,omitempty"`

	Message string `json:"message,omitempty"`
}

// Metadata is written to the head of a generated protocol
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"protocolName"`
	Author      string `json:"author"`
	Description string `json:"description"`
	APILevel    string `json:"apiLevel"`
}

// Placement says what is in a well before or after the protocol runs
type Placement struct {
	Labware string `json:"labware"`
	Well    string `json:"well"`
	Content string `json:"content"`
}

// Protocol is a complete, checked list of commands
type Protocol struct {
	Metadata Metadata       `json:"metadata"`
	Layout   []Placement    `json:"layout"`
	TipsUsed map[string]int `json:"tipsUsed"`
	Commands []Command      `json:"commands"`
}

// Wells returns the wells of a labware that hold content, in layout order
func (p *Protocol) Wells(labware, content string) []string {
	var wells []string
	for _, pl := range p.Layout {
		if pl.Labware == labware && pl.Content == content {
			wells = append(wells, pl.Well)
		}
	}
	return wells
}

// Count returns the number of commands of a kind
func (p *Protocol) Count(k Kind) int {
	n := 0
	for _, c := range p.Commands {
		if c.Kind == k {
			n++
		}
	}
	return n
}
