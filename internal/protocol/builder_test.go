package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	src = Location{Labware: "rack", Well: "A1"}
	dst = Location{Labware: "plate", Well: "B2"}
)

// deck loads a rack on a module, a plate, a tip rack and a p20
func deck() *Builder {
	b := NewBuilder(Metadata{Name: "test"}, Rates{Aspirate: 0.5, Dispense: 1})
	b.LoadModule("temp", "temperature module", 1)
	b.LoadLabwareOn("rack", "opentrons_24_aluminumblock_nest_1.5ml_snapcap", "temp")
	b.LoadLabware("plate", "corning_96_wellplate_360ul_flat", 7)
	b.LoadLabware("tips", "opentrons_96_tiprack_20ul", 9)
	b.LoadInstrument("p20", "p20_single_gen2", "left", "tips")
	return b
}

func kinds(p *Protocol) []Kind {
	var ks []Kind
	for _, c := range p.Commands {
		if c.Kind != LoadModule && c.Kind != LoadLabware && c.Kind != LoadInstrument {
			ks = append(ks, c.Kind)
		}
	}
	return ks
}

func TestBuilder_Transfer(t *testing.T) {
	tests := []struct {
		name      string
		transfers []Transfer
		want      []Kind
		tips      int
	}{
		{
			"plain transfer",
			[]Transfer{{Pipette: "p20", Volume: 5, Source: src, Dest: dst}},
			[]Kind{PickUpTip, Aspirate, Dispense, BlowOut, DropTip},
			1,
		},
		{
			"mix before and after with touch tip",
			[]Transfer{{Pipette: "p20", Volume: 5, Source: src, Dest: dst, MixBefore: 5, MixAfter: 10, TouchTip: true}},
			[]Kind{PickUpTip, Mix, Aspirate, Dispense, Mix, BlowOut, TouchTip, DropTip},
			1,
		},
		{
			"zero volume is skipped",
			[]Transfer{{Pipette: "p20", Volume: 0, Source: src, Dest: dst}},
			nil,
			0,
		},
		{
			"no blow out",
			[]Transfer{{Pipette: "p20", Volume: 5, Source: src, Dest: dst, SkipBlowOut: true}},
			[]Kind{PickUpTip, Aspirate, Dispense, DropTip},
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := deck()
			for _, tr := range tt.transfers {
				b.Transfer(tr)
			}
			p, err := b.Protocol()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, kinds(p)); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.tips, p.TipsUsed["p20"])
		})
	}
}

func TestBuilder_TransferDetails(t *testing.T) {
	b := deck()
	b.Transfer(Transfer{Pipette: "p20", Volume: 5, Source: src, Dest: dst, MixBefore: 5, MixAfter: 8, MixReps: 4})
	p, err := b.Protocol()
	require.NoError(t, err)

	var mixes, aspirates, dispenses []Command
	for _, c := range p.Commands {
		switch c.Kind {
		case Mix:
			mixes = append(mixes, c)
		case Aspirate:
			aspirates = append(aspirates, c)
		case Dispense:
			dispenses = append(dispenses, c)
		}
	}

	require.Len(t, mixes, 2)
	assert.Equal(t, src, *mixes[0].Location)
	assert.Equal(t, 4, mixes[0].Repetitions)
	assert.Equal(t, dst, *mixes[1].Location)
	assert.Equal(t, 8.0, mixes[1].Volume)

	require.Len(t, aspirates, 1)
	assert.Equal(t, 0.5, aspirates[0].Rate)
	require.Len(t, dispenses, 1)
	assert.Equal(t, 1.0, dispenses[0].Rate)
}

func TestBuilder_ReuseTip(t *testing.T) {
	b := deck()
	b.PickUpTip("p20")
	for _, well := range []string{"A1", "A2", "A3"} {
		b.Transfer(Transfer{Pipette: "p20", Volume: 5, Source: src, Dest: Location{Labware: "plate", Well: well}, ReuseTip: true, MixAfter: 5})
	}
	b.DropTip("p20")

	p, err := b.Protocol()
	require.NoError(t, err)
	assert.Equal(t, 1, p.TipsUsed["p20"])
	assert.Equal(t, 3, p.Count(Mix))
	assert.Equal(t, DefaultMixReps, p.Commands[len(p.Commands)-3].Repetitions)
}

func TestBuilder_errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
		isTip bool
	}{
		{
			"aspirate without a tip",
			func(b *Builder) { b.Aspirate("p20", 5, src, 1) },
			true,
		},
		{
			"pick up twice",
			func(b *Builder) { b.PickUpTip("p20"); b.PickUpTip("p20") },
			true,
		},
		{
			"drop without a tip",
			func(b *Builder) { b.DropTip("p20") },
			true,
		},
		{
			"tip left on",
			func(b *Builder) { b.PickUpTip("p20") },
			true,
		},
		{
			"reuse without a tip",
			func(b *Builder) { b.Transfer(Transfer{Pipette: "p20", Volume: 5, Source: src, Dest: dst, ReuseTip: true}) },
			true,
		},
		{
			"unknown labware",
			func(b *Builder) {
				b.Transfer(Transfer{Pipette: "p20", Volume: 5, Source: src, Dest: Location{Labware: "nope", Well: "A1"}})
			},
			false,
		},
		{
			"unknown module",
			func(b *Builder) { b.OpenLid("thermocycler") },
			false,
		},
		{
			"unknown pipette",
			func(b *Builder) { b.PickUpTip("p300") },
			false,
		},
		{
			"labware loaded twice",
			func(b *Builder) { b.LoadLabware("plate", "corning_96_wellplate_360ul_flat", 3) },
			false,
		},
		{
			"profile without steps",
			func(b *Builder) {
				b.LoadModule("tc", "thermocycler module", 0)
				b.ExecuteProfile("tc", nil, 1, 30)
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := deck()
			tt.build(b)
			_, err := b.Protocol()
			require.Error(t, err)
			assert.Equal(t, tt.isTip, errors.Is(err, ErrTip), err.Error())
		})
	}
}

func TestBuilder_stopsAtFirstError(t *testing.T) {
	b := deck()
	b.DropTip("p20")
	b.Comment("after the failure")
	require.Error(t, b.Err())
	assert.Equal(t, 0, b.proto.Count(Comment))
}

func TestProtocol_Wells(t *testing.T) {
	b := deck()
	b.Place("plate", "A1", "gfp")
	b.Place("plate", "A2", "rfp")
	b.Place("plate", "A3", "gfp")
	b.Place("rack", "A1", "gfp")
	p, err := b.Protocol()
	require.NoError(t, err)

	assert.Equal(t, []string{"A1", "A3"}, p.Wells("plate", "gfp"))
	assert.Empty(t, p.Wells("plate", "cfp"))
}
