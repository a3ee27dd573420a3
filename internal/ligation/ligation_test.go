package ligation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// ReadFASTA reads on a goroutine that must finish with the file
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const body = "ATGCATGCATGC"

// linearPart is a part flanked by inward facing BsaI sites
func linearPart(name, left, right string) Sequence {
	return Sequence{
		Name: name,
		Seq:  "CC" + "GGTCTCA" + left + body + right + "TGAGACC" + "CC",
	}
}

// receiver is a plasmid whose BsaI dropout leaves the backbone between left and right
func receiver(name, left, right string) Sequence {
	return Sequence{
		Name:     name,
		Seq:      left + body + right + "TGAGACC" + "AAAA" + "GGTCTCA",
		Circular: true,
	}
}

func TestNewEnzyme(t *testing.T) {
	tests := []struct {
		name     string
		enzyme   string
		site     string
		overhang int
		wantErr  bool
	}{
		{"BsaI", "BsaI", "GGTCTC", 4, false},
		{"SapI leaves 3bp overhangs", "SapI", "GCTCTTC", 3, false},
		{"BtgZI cuts far from its site", "BtgZI", "GCGATG", 4, false},
		{"unknown", "EcoRI", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEnzyme(tt.enzyme)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.site, e.Site())
			assert.Equal(t, tt.overhang, e.Overhang())
		})
	}
}

func Test_recogRegex(t *testing.T) {
	if got := recogRegex("GGTCTCN"); got != "GGTCTC[ACGT]" {
		t.Errorf("recogRegex() = %v", got)
	}
}

func TestDigest(t *testing.T) {
	bsaI, err := NewEnzyme("BsaI")
	require.NoError(t, err)

	tests := []struct {
		name    string
		seq     Sequence
		want    []Fragment
		wantErr bool
	}{
		{
			"linear part",
			linearPart("p1", "AATG", "GCTT"),
			[]Fragment{{Seq: "AATG" + body + "GCTT", Left: "AATG", Right: "GCTT"}},
			false,
		},
		{
			"circular receiver with a site across the origin",
			receiver("r1", "CGCT", "AATG"),
			[]Fragment{{Seq: "CGCT" + body + "AATG", Left: "CGCT", Right: "AATG"}},
			false,
		},
		{
			"no sites",
			Sequence{Name: "empty", Seq: "ATGCATGCATGCATGCATGC"},
			nil,
			true,
		},
		{
			"too short",
			Sequence{Name: "short", Seq: "GGTC"},
			nil,
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Digest(tt.seq, bsaI)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckFusionSites(t *testing.T) {
	bsaI, err := NewEnzyme("BsaI")
	require.NoError(t, err)

	tests := []struct {
		name    string
		parts   []Sequence
		wantErr bool
	}{
		{
			"compatible",
			[]Sequence{linearPart("p1", "AATG", "GCTT"), linearPart("p2", "GCTT", "CGCT"), receiver("r", "CGCT", "AATG")},
			false,
		},
		{
			"mismatched neighbours",
			[]Sequence{linearPart("p1", "AATG", "GCTT"), linearPart("p2", "TTTT", "CGCT"), receiver("r", "CGCT", "AATG")},
			true,
		},
		{
			"doesn't close",
			[]Sequence{linearPart("p1", "AATG", "GCTT"), receiver("r", "GCTT", "CGCT")},
			true,
		},
		{
			"repeated fusion site",
			[]Sequence{linearPart("p1", "AATG", "AATG"), receiver("r", "AATG", "AATG")},
			true,
		},
		{
			"single part",
			[]Sequence{receiver("r", "AATG", "AATG")},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFusionSites(tt.parts, bsaI)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrFusion))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSimulate_unsupported(t *testing.T) {
	_, err := Simulate([]Sequence{linearPart("p1", "AATG", "GCTT")}, "SapI")
	require.Error(t, err)
}

func TestReadFASTA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parts.fasta")
	fasta := ">p1 a promoter\nggtctcaaatg\n>r1\nCGCTAATG\n"
	require.NoError(t, os.WriteFile(path, []byte(fasta), 0644))

	seqs, err := ReadFASTA(path, true)
	require.NoError(t, err)
	require.Len(t, seqs, 2)

	found, err := Lookup(seqs, []string{"r1", "p1"})
	require.NoError(t, err)
	assert.Equal(t, "CGCTAATG", found[0].Seq)
	assert.Equal(t, "GGTCTCAAATG", found[1].Seq)
	assert.True(t, found[1].Circular)

	_, err = Lookup(seqs, []string{"missing"})
	require.Error(t, err)

	_, err = ReadFASTA(filepath.Join(t.TempDir(), "nope.fasta"), false)
	require.Error(t, err)
}
