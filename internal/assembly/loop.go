package assembly

import (
	"fmt"
	"path"

	"go.uber.org/zap"
)

const (
	// maxLoopParts leaves room in the 24 tube block for water, ligase,
	// buffer and one or two enzymes
	maxLoopParts          = 19
	maxLoopPartsTwoLevels = 18
)

// LoopAssembly plans Loop assemblies. Odd level receivers are assembled
// with BsaI and even level receivers with SapI
type LoopAssembly struct {
	Assemblies []Assembly

	// OddPattern and EvenPattern are glob patterns for receiver names,
	// "Odd*" and "Even*" if empty
	OddPattern  string
	EvenPattern string
}

// level returns the enzyme of an assembly's receiver
func (l LoopAssembly) level(a Assembly) (string, error) {
	odd, even := l.OddPattern, l.EvenPattern
	if odd == "" {
		odd = "Odd*"
	}
	if even == "" {
		even = "Even*"
	}

	receiver := a.Receiver()
	if receiver == "" {
		return "", fmt.Errorf("assembly has no %s role", ReceiverRole)
	}
	isOdd, err := path.Match(odd, receiver)
	if err != nil {
		return "", fmt.Errorf("bad odd receiver pattern %q: %w", odd, err)
	}
	isEven, err := path.Match(even, receiver)
	if err != nil {
		return "", fmt.Errorf("bad even receiver pattern %q: %w", even, err)
	}
	switch {
	case isOdd && isEven:
		return "", fmt.Errorf("receiver %s matches both the odd (%s) and the even (%s) pattern", receiver, odd, even)
	case isOdd:
		return "BsaI", nil
	case isEven:
		return "SapI", nil
	}
	return "", fmt.Errorf("receiver %s is neither an odd (%s) nor an even (%s) level receiver", receiver, odd, even)
}

// Plan implements Planner
func (l LoopAssembly) Plan(s Settings) (*Plan, error) {
	if len(l.Assemblies) == 0 {
		return nil, fmt.Errorf("no assemblies to plan")
	}

	var oddCombos, evenCombos [][]string
	var parts []string
	seen := make(map[string]bool)
	for i, a := range l.Assemblies {
		enzyme, err := l.level(a)
		if err != nil {
			return nil, fmt.Errorf("assembly %d: %w", i+1, err)
		}
		if enzyme == "BsaI" {
			oddCombos = append(oddCombos, Combinations(a)...)
		} else {
			evenCombos = append(evenCombos, Combinations(a)...)
		}
		for _, p := range a.Parts() {
			if !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}

	reagents := []string{Water, Ligase, Buffer}
	limit := maxLoopParts
	switch {
	case len(oddCombos) > 0 && len(evenCombos) > 0:
		reagents = append(reagents, "BsaI", "SapI")
		limit = maxLoopPartsTwoLevels
	case len(oddCombos) > 0:
		reagents = append(reagents, "BsaI")
	default:
		reagents = append(reagents, "SapI")
	}
	if len(parts) > limit {
		return nil, fmt.Errorf("%d distinct parts but the tube rack only fits %d next to the reagents", len(parts), limit)
	}
	if err := checkReserved(parts, reagents...); err != nil {
		return nil, err
	}

	odd, err := reactions(oddCombos, "BsaI", s)
	if err != nil {
		return nil, err
	}
	even, err := reactions(evenCombos, "SapI", s)
	if err != nil {
		return nil, err
	}
	all := append(odd, even...)
	if err := checkWells(len(all), s); err != nil {
		return nil, err
	}

	zap.L().Debug("planned loop assembly",
		zap.Int("odd", len(oddCombos)),
		zap.Int("even", len(evenCombos)),
		zap.Int("parts", len(parts)),
		zap.Int("reactions", len(all)))

	return &Plan{
		Name:        "Loop Assembly",
		Description: "Loop assembly of odd (BsaI) and even (SapI) level constructs",
		Reagents:    append(reagents, parts...),
		Reactions:   all,
	}, nil
}
