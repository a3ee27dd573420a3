package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_pythonLine(t *testing.T) {
	tests := []struct {
		name    string
		command Command
		want    string
		wantErr bool
	}{
		{
			"module in a slot",
			Command{Kind: LoadModule, ID: "temp", Name: "temperature module", Slot: 1},
			"temp = protocol.load_module('temperature module', 1)",
			false,
		},
		{
			"thermocycler",
			Command{Kind: LoadModule, ID: "tc", Name: "thermocycler module"},
			"tc = protocol.load_module('thermocycler module')",
			false,
		},
		{
			"labware on a module",
			Command{Kind: LoadLabware, ID: "rack", Name: "opentrons_24_aluminumblock_nest_1.5ml_snapcap", Module: "temp"},
			"rack = temp.load_labware('opentrons_24_aluminumblock_nest_1.5ml_snapcap')",
			false,
		},
		{
			"pipette",
			Command{Kind: LoadInstrument, ID: "p20", Name: "p20_single_gen2", Mount: "left", TipRacks: []string{"tips"}},
			"p20 = protocol.load_instrument('p20_single_gen2', 'left', tip_racks=[tips])",
			false,
		},
		{
			"aspirate",
			Command{Kind: Aspirate, Pipette: "p20", Volume: 2.5, Location: &Location{Labware: "rack", Well: "A1"}, Rate: 0.5},
			"p20.aspirate(2.5, rack['A1'], rate=0.5)",
			false,
		},
		{
			"mix",
			Command{Kind: Mix, Pipette: "p20", Volume: 20, Repetitions: 3, Location: &Location{Labware: "plate", Well: "H12"}},
			"p20.mix(3, 20, plate['H12'])",
			false,
		},
		{
			"profile",
			Command{Kind: ExecuteProfile, Module: "tc", Steps: []Step{{Temperature: 42, HoldMinutes: 2}, {Temperature: 16, HoldMinutes: 5}}, Repetitions: 25, BlockMaxVolume: 30},
			"tc.execute_profile(steps=[{'temperature': 42, 'hold_time_minutes': 2}, {'temperature': 16, 'hold_time_minutes': 5}], repetitions=25, block_max_volume=30)",
			false,
		},
		{
			"comment with a quote",
			Command{Kind: Comment, Message: "don't forget the cells"},
			`protocol.comment('don\'t forget the cells')`,
			false,
		},
		{
			"dispense without a location",
			Command{Kind: Dispense, Pipette: "p20", Volume: 2},
			"",
			true,
		},
		{
			"unknown",
			Command{Kind: "dance"},
			"",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pythonLine(tt.command)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWritePython(t *testing.T) {
	p := transferProtocol(t)
	p.Metadata = Metadata{ID: "run-1", Name: "Loop Assembly", Author: "pudu", Description: "test", APILevel: "2.13"}
	p.Layout = []Placement{{Labware: "rack", Well: "A1", Content: "dd_h2o"}}

	var buf bytes.Buffer
	require.NoError(t, WritePython(&buf, p))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "from opentrons import protocol_api\n"))
	assert.Contains(t, out, "# rack A1: dd_h2o")
	assert.Contains(t, out, "'protocolName': 'Loop Assembly',")
	assert.Contains(t, out, "'apiLevel': '2.13',")
	assert.Contains(t, out, "def run(protocol: protocol_api.ProtocolContext):\n    temp = protocol.load_module('temperature module', 1)")
	assert.Equal(t, 2, strings.Count(out, "    p20.pick_up_tip()\n"))
	assert.Contains(t, out, "    tc.close_lid()\n")
}

func TestWritePython_layoutStaysInComments(t *testing.T) {
	p := transferProtocol(t)
	p.Metadata.ID = "run\nimport os"
	p.Layout = []Placement{{Labware: "rack", Well: "A1", Content: "gfp\nimport os\r\nos.remove('x')"}}

	var buf bytes.Buffer
	require.NoError(t, WritePython(&buf, p))
	out := buf.String()

	assert.Contains(t, out, "# rack A1: gfp import os os.remove('x')\n")
	assert.Contains(t, out, "# generated by pudu, run run import os\n")
	for _, line := range strings.Split(out, "\n") {
		assert.False(t, strings.HasPrefix(line, "import os") || strings.HasPrefix(line, "os.remove"), line)
	}
}
