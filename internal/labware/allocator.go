package labware

import "fmt"

// Allocator hands out the wells of a labware in order. Each name gets
// one well and asking for the same name again returns that same well
type Allocator struct {
	labware  string
	wells    []string
	next     int
	assigned map[string]string
}

// NewAllocator returns an Allocator over the wells of a geometry, starting
// at the well with index start
func NewAllocator(labware string, g Geometry, start int) (*Allocator, error) {
	if start < 0 || start >= g.Size() {
		return nil, fmt.Errorf("starting well %d is outside %s (%d wells)", start, labware, g.Size())
	}
	return &Allocator{
		labware:  labware,
		wells:    g.Wells()[start:],
		assigned: make(map[string]string),
	}, nil
}

// Assign returns the well of name, taking the next free well if name is new
func (a *Allocator) Assign(name string) (string, error) {
	if well, ok := a.assigned[name]; ok {
		return well, nil
	}
	if a.next >= len(a.wells) {
		return "", fmt.Errorf("%w in %s for %s", ErrFull, a.labware, name)
	}

	well := a.wells[a.next]
	a.next++
	a.assigned[name] = well
	return well, nil
}

// MustHave returns the well of an already assigned name
func (a *Allocator) MustHave(name string) (string, error) {
	well, ok := a.assigned[name]
	if !ok {
		return "", fmt.Errorf("%s has not been assigned a well in %s", name, a.labware)
	}
	return well, nil
}

// Remaining is the number of free wells
func (a *Allocator) Remaining() int {
	return len(a.wells) - a.next
}
