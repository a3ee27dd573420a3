// Package labware describes well geometry of plates and tube blocks and
// assigns contents to their wells
package labware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFull is returned when there are no wells left to assign
var ErrFull = errors.New("no wells left")

// Geometry is the row/column layout of a labware
type Geometry struct {
	Rows int
	Cols int
}

var (
	// Plate96 is a 96 well plate, A1 to H12
	Plate96 = Geometry{Rows: 8, Cols: 12}

	// Block24 is a 24 tube aluminum block, A1 to D6
	Block24 = Geometry{Rows: 4, Cols: 6}
)

// Size is the number of wells
func (g Geometry) Size() int {
	return g.Rows * g.Cols
}

// Wells returns every well name, row by row (A1, A2, ... B1, ...)
func (g Geometry) Wells() []string {
	wells := make([]string, 0, g.Size())
	for r := 0; r < g.Rows; r++ {
		wells = append(wells, g.Row(r)...)
	}
	return wells
}

// Row returns the wells of the row at index r
func (g Geometry) Row(r int) []string {
	row := make([]string, 0, g.Cols)
	for c := 0; c < g.Cols; c++ {
		row = append(row, Name(r, c))
	}
	return row
}

// Well returns the name of the well at a row-major index
func (g Geometry) Well(i int) (string, error) {
	if i < 0 || i >= g.Size() {
		return "", fmt.Errorf("well index %d out of range [0, %d)", i, g.Size())
	}
	return Name(i/g.Cols, i%g.Cols), nil
}

// Index returns the row-major index of a well name
func (g Geometry) Index(well string) (int, error) {
	r, c, err := Parse(well)
	if err != nil {
		return 0, err
	}
	if r >= g.Rows || c >= g.Cols {
		return 0, fmt.Errorf("well %s is outside a %dx%d labware", well, g.Rows, g.Cols)
	}
	return r*g.Cols + c, nil
}

// Name turns a zero-indexed row and column into a well name: (1, 2) -> "B3"
func Name(row, col int) string {
	return string(rune('A'+row)) + strconv.Itoa(col+1)
}

// Parse turns a well name into its zero-indexed row and column
func Parse(well string) (row, col int, err error) {
	if len(well) < 2 {
		return 0, 0, fmt.Errorf("invalid well name %q", well)
	}
	row, err = RowIndex(well[:1])
	if err != nil {
		return 0, 0, err
	}
	col, err = strconv.Atoi(well[1:])
	if err != nil || col < 1 {
		return 0, 0, fmt.Errorf("invalid well name %q", well)
	}
	return row, col - 1, nil
}

// RowIndex turns a row letter into its zero-indexed row: "A" -> 0
func RowIndex(letter string) (int, error) {
	l := strings.ToUpper(strings.TrimSpace(letter))
	if len(l) != 1 || l[0] < 'A' || l[0] > 'Z' {
		return 0, fmt.Errorf("invalid row letter %q", letter)
	}
	return int(l[0] - 'A'), nil
}

// SampleGroups returns 24 groups of 4 wells on a 96 well plate. Each group
// holds the technical replicates of one sample. Groups 1-10 fill columns
// 2-11 of rows A-D, groups 11-20 the same columns of rows E-H, and the last
// four use the edge columns 1 and 12
func SampleGroups() [][]string {
	quad := func(firstRow, col int) []string {
		return []string{
			Name(firstRow, col),
			Name(firstRow+1, col),
			Name(firstRow+2, col),
			Name(firstRow+3, col),
		}
	}

	var groups [][]string
	for _, firstRow := range []int{0, 4} {
		for col := 1; col <= 10; col++ {
			groups = append(groups, quad(firstRow, col))
		}
	}
	for _, col := range []int{0, 11} {
		groups = append(groups, quad(0, col), quad(4, col))
	}
	return groups
}
