package ligation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/koeng101/poly"
	"go.uber.org/zap"
)

// ErrFusion is returned when parts can't ligate into a single construct
var ErrFusion = errors.New("incompatible fusion sites")

// CheckFusionSites digests each part of an ordered combination and checks
// that the parts ligate into one circular construct: each part leaves a
// single fragment, each fragment's right fusion site is the next one's
// left, the last closes onto the first, and no fusion site repeats
func CheckFusionSites(parts []Sequence, e Enzyme) error {
	if len(parts) < 2 {
		return fmt.Errorf("%w: need at least two parts, got %d", ErrFusion, len(parts))
	}

	frags := make([]Fragment, len(parts))
	for i, part := range parts {
		fs, err := Digest(part, e)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFusion, err)
		}
		if len(fs) != 1 {
			return fmt.Errorf("%w: %s leaves %d fragments after %s digestion, expected 1", ErrFusion, part.Name, len(fs), e.Name)
		}
		frags[i] = fs[0]
	}

	used := make(map[string]string)
	for i, f := range frags {
		next := frags[(i+1)%len(frags)]
		if f.Right != next.Left {
			return fmt.Errorf("%w: %s ends in %s but %s starts with %s",
				ErrFusion, parts[i].Name, f.Right, parts[(i+1)%len(parts)].Name, next.Left)
		}
		if other, ok := used[f.Left]; ok {
			return fmt.Errorf("%w: %s and %s both start with %s", ErrFusion, other, parts[i].Name, f.Left)
		}
		used[f.Left] = parts[i].Name
	}

	zap.L().Debug("fusion sites ok", zap.Int("parts", len(parts)), zap.String("enzyme", e.Name))
	return nil
}

// golden gate enzymes poly can simulate
var polyEnzymes = map[string]bool{
	"BsaI":  true,
	"BbsI":  true,
	"BtgZI": true,
	"BsmBI": true,
}

// CanSimulate reports whether Simulate supports an enzyme
func CanSimulate(enzyme string) bool {
	return polyEnzymes[enzyme]
}

// Simulate runs a Golden Gate simulation of the parts with poly and
// returns the single construct they make
func Simulate(parts []Sequence, enzyme string) (string, error) {
	if !CanSimulate(enzyme) {
		return "", fmt.Errorf("golden gate simulation does not support %s", enzyme)
	}

	seqs := make([]poly.CloneSequence, len(parts))
	for i, p := range parts {
		seqs[i] = poly.CloneSequence{Sequence: strings.ToUpper(p.Seq), Circular: p.Circular}
	}

	constructs, err := poly.GoldenGate(seqs, enzyme)
	if err != nil {
		return "", fmt.Errorf("failed to simulate golden gate: %w", err)
	}
	if len(constructs) != 1 {
		return "", fmt.Errorf("%w: simulation made %d constructs, expected 1", ErrFusion, len(constructs))
	}
	return constructs[0].Sequence, nil
}

// ReadFASTA reads every sequence in a FASTA file
func ReadFASTA(path string, circular bool) ([]Sequence, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read sequences: %w", err)
	}

	fastas := make(chan poly.Fasta, 100)
	go poly.ReadFASTAConcurrent(path, fastas)

	var seqs []Sequence
	for f := range fastas {
		name := f.Name
		if fields := strings.Fields(name); len(fields) > 0 {
			name = fields[0]
		}
		seqs = append(seqs, Sequence{
			Name:     name,
			Seq:      strings.ToUpper(strings.ReplaceAll(f.Sequence, " ", "")),
			Circular: circular,
		})
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no sequences in %s", path)
	}
	return seqs, nil
}

// Lookup returns the sequences of parts by name
func Lookup(seqs []Sequence, names []string) ([]Sequence, error) {
	byName := make(map[string]Sequence, len(seqs))
	for _, s := range seqs {
		byName[s.Name] = s
	}

	out := make([]Sequence, len(names))
	for i, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no sequence for %s", name)
		}
		out[i] = s
	}
	return out, nil
}
