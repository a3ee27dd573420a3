package labware

import (
	"errors"
	"reflect"
	"testing"
)

func TestGeometry_Wells(t *testing.T) {
	wells := Plate96.Wells()
	if len(wells) != 96 {
		t.Fatalf("len(Plate96.Wells()) = %d, want 96", len(wells))
	}
	if wells[0] != "A1" || wells[11] != "A12" || wells[12] != "B1" || wells[95] != "H12" {
		t.Errorf("unexpected well order: %v", wells)
	}

	block := Block24.Wells()
	want := []string{"A1", "A2", "A3", "A4", "A5", "A6", "B1"}
	if !reflect.DeepEqual(block[:7], want) {
		t.Errorf("Block24.Wells()[:7] = %v, want %v", block[:7], want)
	}
	if block[23] != "D6" {
		t.Errorf("last Block24 well = %s, want D6", block[23])
	}
}

func TestGeometry_Index(t *testing.T) {
	tests := []struct {
		name    string
		g       Geometry
		well    string
		want    int
		wantErr bool
	}{
		{"first", Plate96, "A1", 0, false},
		{"second row", Plate96, "B1", 12, false},
		{"last", Plate96, "H12", 95, false},
		{"block", Block24, "B2", 7, false},
		{"outside block", Block24, "E1", 0, true},
		{"bad column", Plate96, "A0", 0, true},
		{"bad row", Plate96, "11", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.g.Index(tt.well)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Index() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Index() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleGroups(t *testing.T) {
	groups := SampleGroups()
	if len(groups) != 24 {
		t.Fatalf("len(SampleGroups()) = %d, want 24", len(groups))
	}

	tests := []struct {
		index int
		want  []string
	}{
		{0, []string{"A2", "B2", "C2", "D2"}},
		{9, []string{"A11", "B11", "C11", "D11"}},
		{10, []string{"E2", "F2", "G2", "H2"}},
		{20, []string{"A1", "B1", "C1", "D1"}},
		{21, []string{"E1", "F1", "G1", "H1"}},
		{22, []string{"A12", "B12", "C12", "D12"}},
		{23, []string{"E12", "F12", "G12", "H12"}},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(groups[tt.index], tt.want) {
			t.Errorf("SampleGroups()[%d] = %v, want %v", tt.index, groups[tt.index], tt.want)
		}
	}

	// every well of the plate is used exactly once
	seen := map[string]bool{}
	for _, g := range groups {
		for _, w := range g {
			if seen[w] {
				t.Errorf("well %s in more than one group", w)
			}
			seen[w] = true
		}
	}
	if len(seen) != 96 {
		t.Errorf("groups cover %d wells, want 96", len(seen))
	}
}

func TestAllocator(t *testing.T) {
	a, err := NewAllocator("block", Block24, 22)
	if err != nil {
		t.Fatal(err)
	}

	w1, err := a.Assign("BsaI")
	if err != nil || w1 != "D5" {
		t.Fatalf("Assign(BsaI) = %s, %v", w1, err)
	}
	again, _ := a.Assign("BsaI")
	if again != w1 {
		t.Errorf("re-assigning returned %s, want %s", again, w1)
	}
	if w2, _ := a.Assign("T4"); w2 != "D6" {
		t.Errorf("Assign(T4) = %s, want D6", w2)
	}
	if a.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", a.Remaining())
	}
	if _, err := a.Assign("water"); !errors.Is(err, ErrFull) {
		t.Errorf("Assign on full labware error = %v, want ErrFull", err)
	}
	if _, err := a.MustHave("water"); err == nil {
		t.Error("MustHave() of an unassigned name should fail")
	}
}

func TestNewAllocator_badStart(t *testing.T) {
	if _, err := NewAllocator("plate", Plate96, 96); err == nil {
		t.Error("NewAllocator() expected error for start past the last well")
	}
}
