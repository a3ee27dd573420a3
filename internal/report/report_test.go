package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func example() *protocol.Protocol {
	return &protocol.Protocol{
		Metadata: protocol.Metadata{ID: "abc", Name: "Plate Samples", Description: "2 samples"},
		Layout: []protocol.Placement{
			{Labware: "tube_rack", Well: "A2", Content: "rfp"},
			{Labware: "tube_rack", Well: "A1", Content: "gfp"},
			{Labware: "plate", Well: "B2", Content: "gfp"},
			{Labware: "plate", Well: "A10", Content: "rfp"},
			{Labware: "plate", Well: "A2", Content: "gfp"},
		},
		TipsUsed: map[string]int{"pipette": 2},
		Commands: []protocol.Command{{Kind: protocol.PickUpTip}, {Kind: protocol.DropTip}},
	}
}

func TestNew(t *testing.T) {
	now = func() time.Time { return time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC) }
	defer func() { now = time.Now }()

	r := New(example(), 1.5)
	assert.Equal(t, "2021/03/04 05:06:07", r.Time)
	assert.Equal(t, "abc", r.ProtocolID)
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, 2, r.Commands)
	assert.Equal(t, map[string]int{"pipette": 2}, r.Tips)

	want := []Labware{
		{ID: "tube_rack", Wells: []Well{{"A1", "gfp"}, {"A2", "rfp"}}},
		{ID: "plate", Wells: []Well{{"A2", "gfp"}, {"A10", "rfp"}, {"B2", "gfp"}}},
	}
	if diff := cmp.Diff(want, r.Labware); diff != "" {
		t.Errorf("New() labware mismatch (-want +got):\n%s", diff)
	}
}

func Test_wellLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"A1", "A2", true},
		{"A2", "A10", true},
		{"A12", "B1", true},
		{"B1", "A12", false},
		{"A1", "x", true},
		{"x", "A1", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"<"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, wellLess(tt.a, tt.b))
		})
	}
}

func TestReport_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(example(), 0.1).WriteJSON(&buf))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Plate Samples", got["protocol"])
	assert.EqualValues(t, 2, got["commands"])
	assert.Len(t, got["labware"], 2)
}

func TestReport_Render(t *testing.T) {
	out := New(example(), 0).Render()

	for _, want := range []string{"Plate Samples", "tube_rack", "plate", "1 gfp", "2 rfp", "pipette: 2 tips", "2 commands"} {
		assert.True(t, strings.Contains(out, want), "missing %q in\n%s", want, out)
	}
	// the plate needs 12 columns, the tube rack 6
	assert.True(t, strings.Contains(out, "12"))
}

func Test_geometry(t *testing.T) {
	assert.Equal(t, labware.Block24, geometry([]Well{{Well: "D6"}}))
	assert.Equal(t, labware.Plate96, geometry([]Well{{Well: "A1"}, {Well: "E1"}}))
	assert.Equal(t, labware.Plate96, geometry([]Well{{Well: "A7"}}))
}
