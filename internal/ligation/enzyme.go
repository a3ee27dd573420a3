// Package ligation simulates Type IIS digestion and ligation of parts to
// check that their fusion sites assemble into a single construct
package ligation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Enzyme is a Type IIS restriction enzyme that cuts outside its
// recognition site, leaving a single stranded overhang
type Enzyme struct {
	Name string

	// recog is the recognition site plus the bases up to the bottom strand cut
	recog string

	// cutInd is the top strand cut and hangInd the bottom strand cut,
	// both relative to the start of recog
	cutInd  int
	hangInd int

	site *regexp.Regexp
}

// enzymes are written as recognition sites with the top strand cut
// marked by ^ and the bottom strand cut by _
var enzymes = map[string]string{
	"BsaI":  "GGTCTCN^NNNN_",
	"BbsI":  "GAAGACNN^NNNN_",
	"BsmBI": "CGTCTCN^NNNN_",
	"SapI":  "GCTCTTCN^NNN_",
	"BtgZI": "GCGATGNNNNNNNNNN^NNNN_",
	"PaqCI": "CACCTGCNNNN^NNNN_",
}

// Enzymes returns the names of the known enzymes
func Enzymes() []string {
	names := make([]string, 0, len(enzymes))
	for name := range enzymes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEnzyme looks up an enzyme by name
func NewEnzyme(name string) (Enzyme, error) {
	recog, ok := enzymes[name]
	if !ok {
		return Enzyme{}, fmt.Errorf("unknown enzyme %s, known enzymes: %s", name, strings.Join(Enzymes(), ", "))
	}
	return parseEnzyme(name, recog), nil
}

// parseEnzyme reads a recognition sequence into its cut and hang indexes
func parseEnzyme(name, recogSeq string) Enzyme {
	cutIndex := strings.Index(recogSeq, "^")
	hangIndex := strings.Index(recogSeq, "_")

	if cutIndex < hangIndex {
		hangIndex--
	} else {
		cutIndex--
	}

	recogSeq = strings.Replace(recogSeq, "^", "", -1)
	recogSeq = strings.Replace(recogSeq, "_", "", -1)

	return Enzyme{
		Name:    name,
		recog:   recogSeq,
		cutInd:  cutIndex,
		hangInd: hangIndex,
		site:    regexp.MustCompile(recogRegex(strings.Trim(recogSeq, "N"))),
	}
}

// Overhang is the length of the single stranded end left by a cut
func (e Enzyme) Overhang() int {
	return e.hangInd - e.cutInd
}

// Site is the recognition site without the spacer bases
func (e Enzyme) Site() string {
	return strings.Trim(e.recog, "N")
}

// recogRegex turns a recognition sequence with ambiguous bases into a regex
func recogRegex(recog string) string {
	regexDecode := map[rune]string{
		'A': "A",
		'C': "C",
		'G': "G",
		'T': "T",
		'M': "[AC]",
		'R': "[AG]",
		'W': "[AT]",
		'Y': "[CT]",
		'S': "[CG]",
		'K': "[GT]",
		'H': "[ACT]",
		'D': "[AGT]",
		'V': "[ACG]",
		'B': "[CGT]",
		'N': "[ACGT]",
	}

	var b strings.Builder
	for _, c := range recog {
		b.WriteString(regexDecode[c])
	}
	return b.String()
}
