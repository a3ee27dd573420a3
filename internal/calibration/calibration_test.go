package calibration

import (
	"context"
	"testing"

	"github.com/jjtimmons/pudu/config"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocol(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		falcon bool
		rows   int
		tubes  map[string]string
	}{
		{
			name:   "gfp",
			layout: GFP,
			rows:   4,
			tubes:  map[string]string{"fluorescein_1x": "A1", "microspheres_1x": "A2", "pbs_1": "A3", "pbs_2": "A4", "water_2": "A6"},
		},
		{
			name:   "rgb",
			layout: RGB,
			rows:   8,
			tubes:  map[string]string{"sulforhodamine_1x": "A1", "cascade_blue_1x": "A3", "pbs_4": "B4", "water_1": "C1"},
		},
		{
			name:   "rgb from falcon tubes",
			layout: RGB,
			falcon: true,
			rows:   8,
			tubes:  map[string]string{"fluorescein_1x": "A2", "microspheres_1x": "A4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings(config.New())
			s.UseFalconTubes = tt.falcon

			p, err := Protocol(tt.layout, s)
			require.NoError(t, err)
			for content, well := range tt.tubes {
				assert.Equal(t, []string{well}, p.Wells(tubeRack, content), content)
			}

			sim := protocol.NewSimulator()
			require.NoError(t, protocol.Replay(context.Background(), sim, p))
			assert.False(t, sim.Holding())

			// a tip per diluent, then one per row for calibrant and dilution
			assert.Equal(t, 2+2*tt.rows, sim.TipsUsed[pipette])

			for r := 0; r < tt.rows; r++ {
				row := labware.Plate96.Row(r)
				assert.InDelta(t, 100, sim.Volumes[protocol.Location{Labware: plate, Well: row[0]}], 1e-9, row[0])
				for _, well := range row[1:11] {
					assert.InDelta(t, 100, sim.Volumes[protocol.Location{Labware: plate, Well: well}], 1e-9, well)
				}
				assert.InDelta(t, 200, sim.Volumes[protocol.Location{Labware: plate, Well: row[11]}], 1e-9, row[11])
			}

			if tt.falcon {
				assert.Equal(t, []string{"A1"}, p.Wells(falconRack, "pbs"))
				assert.InDelta(t, -100*11*4, sim.Volumes[protocol.Location{Labware: falconRack, Well: "A1"}], 1e-9)
				assert.Empty(t, p.Wells(tubeRack, "pbs_1"))
			}
		})
	}
}

func TestProtocol_dilutionLabels(t *testing.T) {
	p, err := Protocol(GFP, NewSettings(config.New()))
	require.NoError(t, err)

	assert.Equal(t, []string{"A1", "B1"}, p.Wells(plate, "fluorescein_1x"))
	assert.Equal(t, []string{"C2", "D2"}, p.Wells(plate, "microspheres_1x 1:2"))
	assert.Equal(t, []string{"A12", "B12"}, p.Wells(plate, "fluorescein_1x 1:2048"))
}

func TestProtocol_withoutTemperatureModule(t *testing.T) {
	s := NewSettings(config.New())
	s.UseTemperatureModule = false

	p, err := Protocol(GFP, s)
	require.NoError(t, err)
	assert.Zero(t, p.Count(protocol.LoadModule))
}

func TestLayout_validate(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
	}{
		{
			"shared tube",
			Layout{
				Calibrants: []Calibrant{{Name: "a", Tube: "A1", Rows: []string{"A"}}},
				Diluents:   []Diluent{{Name: "pbs", Tubes: map[string]string{"A": "A1"}}},
			},
		},
		{
			"shared row",
			Layout{
				Calibrants: []Calibrant{
					{Name: "a", Tube: "A1", Rows: []string{"A"}},
					{Name: "b", Tube: "A2", Rows: []string{"A"}},
				},
				Diluents: []Diluent{{Name: "pbs", Tubes: map[string]string{"A": "A3"}}},
			},
		},
		{
			"row without diluent",
			Layout{
				Calibrants: []Calibrant{{Name: "a", Tube: "A1", Rows: []string{"A", "B"}}},
				Diluents:   []Diluent{{Name: "pbs", Tubes: map[string]string{"A": "A3"}}},
			},
		},
		{
			"bad row",
			Layout{
				Calibrants: []Calibrant{{Name: "a", Tube: "A1", Rows: []string{"1"}}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Protocol(tt.layout, NewSettings(config.New()))
			assert.Error(t, err)
		})
	}
}
