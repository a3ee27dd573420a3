package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
)

var pythonTemplate = template.Must(template.New("protocol").Funcs(template.FuncMap{"py": pyString, "comment": pyComment}).Parse(`from opentrons import protocol_api

# generated by pudu, run {{comment .Metadata.ID}}
{{- range .Layout}}
# {{comment .Labware}} {{comment .Well}}: {{comment .Content}}
{{- end}}

metadata = {
    'protocolName': {{py .Metadata.Name}},
    'author': {{py .Metadata.Author}},
    'description': {{py .Metadata.Description}},
    'apiLevel': {{py .Metadata.APILevel}},
}


def run(protocol: protocol_api.ProtocolContext):
{{- range .Lines}}
    {{.}}
{{- end}}
`))

// WritePython writes the protocol as an Opentrons Python protocol that
// issues every command through the protocol API
func WritePython(w io.Writer, p *Protocol) error {
	lines := make([]string, 0, len(p.Commands))
	for i, c := range p.Commands {
		line, err := pythonLine(c)
		if err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, "pass")
	}

	data := struct {
		*Protocol
		Lines []string
	}{p, lines}

	return pythonTemplate.Execute(w, data)
}

func pythonLine(c Command) (string, error) {
	switch c.Kind {
	case LoadModule:
		if c.Slot == 0 {
			return fmt.Sprintf("%s = protocol.load_module(%s)", c.ID, pyString(c.Name)), nil
		}
		return fmt.Sprintf("%s = protocol.load_module(%s, %d)", c.ID, pyString(c.Name), c.Slot), nil
	case LoadLabware:
		if c.Module != "" {
			return fmt.Sprintf("%s = %s.load_labware(%s)", c.ID, c.Module, pyString(c.Name)), nil
		}
		return fmt.Sprintf("%s = protocol.load_labware(%s, %d)", c.ID, pyString(c.Name), c.Slot), nil
	case LoadInstrument:
		return fmt.Sprintf("%s = protocol.load_instrument(%s, %s, tip_racks=[%s])",
			c.ID, pyString(c.Name), pyString(c.Mount), strings.Join(c.TipRacks, ", ")), nil

	case SetTemperature:
		return fmt.Sprintf("%s.set_temperature(%s)", c.Module, pyFloat(c.Temperature)), nil
	case Deactivate:
		return c.Module + ".deactivate()", nil
	case OpenLid:
		return c.Module + ".open_lid()", nil
	case CloseLid:
		return c.Module + ".close_lid()", nil
	case SetBlockTemperature:
		return fmt.Sprintf("%s.set_block_temperature(%s)", c.Module, pyFloat(c.Temperature)), nil
	case SetLidTemperature:
		return fmt.Sprintf("%s.set_lid_temperature(%s)", c.Module, pyFloat(c.Temperature)), nil
	case ExecuteProfile:
		steps := make([]string, len(c.Steps))
		for i, s := range c.Steps {
			steps[i] = fmt.Sprintf("{'temperature': %s, 'hold_time_minutes': %s}", pyFloat(s.Temperature), pyFloat(s.HoldMinutes))
		}
		return fmt.Sprintf("%s.execute_profile(steps=[%s], repetitions=%d, block_max_volume=%s)",
			c.Module, strings.Join(steps, ", "), c.Repetitions, pyFloat(c.BlockMaxVolume)), nil

	case PickUpTip:
		return c.Pipette + ".pick_up_tip()", nil
	case DropTip:
		return c.Pipette + ".drop_tip()", nil
	case Aspirate, Dispense:
		if c.Location == nil {
			return "", fmt.Errorf("%s without a location", c.Kind)
		}
		method := "aspirate"
		if c.Kind == Dispense {
			method = "dispense"
		}
		return fmt.Sprintf("%s.%s(%s, %s, rate=%s)", c.Pipette, method, pyFloat(c.Volume), pyLocation(*c.Location), pyFloat(c.Rate)), nil
	case Mix:
		if c.Location == nil {
			return "", fmt.Errorf("mix without a location")
		}
		return fmt.Sprintf("%s.mix(%d, %s, %s)", c.Pipette, c.Repetitions, pyFloat(c.Volume), pyLocation(*c.Location)), nil
	case BlowOut:
		return c.Pipette + ".blow_out()", nil
	case TouchTip:
		return c.Pipette + ".touch_tip()", nil

	case Comment:
		return fmt.Sprintf("protocol.comment(%s)", pyString(c.Message)), nil
	}
	return "", fmt.Errorf("no python for command %q", c.Kind)
}

func pyLocation(l Location) string {
	return fmt.Sprintf("%s[%s]", l.Labware, pyString(l.Well))
}

func pyFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// pyString quotes a string as a Python literal
// pyComment keeps s on a single comment line
func pyComment(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func pyString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}
