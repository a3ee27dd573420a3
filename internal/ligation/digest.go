package ligation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/koeng101/poly"
)

// Sequence is a named DNA sequence, a plasmid if Circular
type Sequence struct {
	Name     string
	Seq      string
	Circular bool
}

// Fragment is a piece of a digested sequence between two cuts. Seq
// includes both overhangs
type Fragment struct {
	Seq   string
	Left  string
	Right string
}

// cuts returns the start of the overhang of every cut of the enzyme on
// either strand, sorted and relative to the top strand
func (e Enzyme) cuts(s Sequence) ([]int, error) {
	seq := strings.ToUpper(s.Seq)
	n := len(seq)
	if n < len(e.recog) {
		return nil, fmt.Errorf("%s is too short for digestion with %s", s.Name, e.Name)
	}

	rc := poly.ReverseComplement(seq)
	fwdSearch, revSearch := seq, rc
	if s.Circular {
		// wrap so sites spanning the origin are found
		fwdSearch += seq[:e.hangInd]
		revSearch += rc[:e.hangInd]
	}

	seen := make(map[int]bool)
	var starts []int
	add := func(start int) {
		if s.Circular {
			start = ((start % n) + n) % n
		}
		if !seen[start] {
			seen[start] = true
			starts = append(starts, start)
		}
	}

	for _, m := range e.site.FindAllStringIndex(fwdSearch, -1) {
		i := m[0]
		if i >= n || i+e.hangInd > len(fwdSearch) {
			continue
		}
		add(i + e.cutInd)
	}
	for _, m := range e.site.FindAllStringIndex(revSearch, -1) {
		j := m[0]
		if j >= n || j+e.hangInd > len(revSearch) {
			continue
		}
		add(n - j - e.hangInd)
	}

	sort.Ints(starts)
	return starts, nil
}

// Digest cuts a sequence with an enzyme and returns the fragments that
// no longer carry a recognition site, the ones that survive in a one pot
// digestion-ligation. Fragments at the ends of a linear sequence have a
// single fusion site and are dropped
func Digest(s Sequence, e Enzyme) ([]Fragment, error) {
	starts, err := e.cuts(s)
	if err != nil {
		return nil, err
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("no %s sites in %s", e.Name, s.Name)
	}

	seq := strings.ToUpper(s.Seq)
	n := len(seq)
	oh := e.Overhang()

	var pieces []string
	if s.Circular {
		wrapped := seq + seq + seq
		for k, a := range starts {
			b := starts[(k+1)%len(starts)]
			if b <= a {
				b += n
			}
			pieces = append(pieces, wrapped[a:b+oh])
		}
	} else {
		for k := 0; k+1 < len(starts); k++ {
			a, b := starts[k], starts[k+1]
			if b+oh > n {
				continue
			}
			pieces = append(pieces, seq[a:b+oh])
		}
	}

	var frags []Fragment
	for _, p := range pieces {
		if e.site.MatchString(p) || e.site.MatchString(poly.ReverseComplement(p)) {
			continue
		}
		frags = append(frags, Fragment{
			Seq:   p,
			Left:  p[:oh],
			Right: p[len(p)-oh:],
		})
	}
	return frags, nil
}
