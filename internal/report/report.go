// Package report summarizes generated protocols as JSON or as plate maps
// for the terminal
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jjtimmons/pudu/internal/labware"
	"github.com/jjtimmons/pudu/internal/protocol"
)

// now is swapped out in tests
var now = time.Now

// Well is the content of one well
type Well struct {
	Well    string `json:"well"`
	Content string `json:"content"`
}

// Labware is everything placed in one labware, in well order
type Labware struct {
	ID    string `json:"id"`
	Wells []Well `json:"wells"`
}

// Report is a summary of a generated protocol
type Report struct {
	// RunID identifies this generation run
	RunID string `json:"runId"`

	// ProtocolID is the id in the protocol's metadata
	ProtocolID string `json:"protocolId"`

	// Time, ex: "2018/01/01 20:41:00"
	Time string `json:"time"`

	// Execution is the number of seconds it took to plan the protocol
	Execution float64 `json:"execution"`

	Protocol    string `json:"protocol"`
	Description string `json:"description"`

	// Labware in the order it's first filled
	Labware []Labware `json:"labware"`

	// Tips used per pipette
	Tips map[string]int `json:"tips"`

	// Commands is the number of robot commands
	Commands int `json:"commands"`
}

// New summarizes a protocol that took seconds to plan
func New(p *protocol.Protocol, seconds float64) *Report {
	t := now()
	r := &Report{
		RunID:      uuid.New().String(),
		ProtocolID: p.Metadata.ID,
		Time: fmt.Sprintf(
			"%d/%02d/%02d %02d:%02d:%02d",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		),
		Execution:   seconds,
		Protocol:    p.Metadata.Name,
		Description: p.Metadata.Description,
		Tips:        make(map[string]int, len(p.TipsUsed)),
		Commands:    len(p.Commands),
	}
	for pipette, n := range p.TipsUsed {
		r.Tips[pipette] = n
	}
	r.Labware = group(p.Layout)
	return r
}

// group collects placements by labware. A well placed twice keeps its
// last content
func group(layout []protocol.Placement) []Labware {
	var order []string
	byLabware := make(map[string]map[string]string)
	for _, pl := range layout {
		wells, ok := byLabware[pl.Labware]
		if !ok {
			wells = make(map[string]string)
			byLabware[pl.Labware] = wells
			order = append(order, pl.Labware)
		}
		wells[pl.Well] = pl.Content
	}

	groups := make([]Labware, 0, len(order))
	for _, id := range order {
		lw := Labware{ID: id}
		for well, content := range byLabware[id] {
			lw.Wells = append(lw.Wells, Well{Well: well, Content: content})
		}
		sort.Slice(lw.Wells, func(i, j int) bool {
			return wellLess(lw.Wells[i].Well, lw.Wells[j].Well)
		})
		groups = append(groups, lw)
	}
	return groups
}

// wellLess orders wells row by row, unparseable names last
func wellLess(a, b string) bool {
	ra, ca, errA := labware.Parse(a)
	rb, cb, errB := labware.Parse(b)
	switch {
	case errA != nil || errB != nil:
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return a < b
	case ra != rb:
		return ra < rb
	default:
		return ca < cb
	}
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
