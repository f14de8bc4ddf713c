package report

import (
	"fmt"
	"regexp"
	"strings"

	"slhagen/internal/slha"
)

var (
	// reBestValue matches the single required summary line with the
	// central value and its uncertainty.
	reBestValue = regexp.MustCompile(`amu \(1-loop \+ 2-loop best\)\s*=\s*` + numExp + `\s*\+-\s*` + numExp)

	// reSectionStart marks a line that opens a new report section.
	reSectionStart = regexp.MustCompile(`^\w`)

	// reTagStrip removes everything but uppercase letters, digits and
	// spaces from a section name.
	reTagStrip = regexp.MustCompile(`[^A-Z0-9 ]`)

	reUnlabeledLine = regexp.MustCompile(`^\s*` + numExp)
	reLabeledLine   = regexp.MustCompile(`^\s*(.+?)\s+` + numExp)
)

// tanbetaCorrectionLabel is the exact label GM2Calc prints in front of the
// tan(beta) correction value.
const tanbetaCorrectionLabel = `amu(1L) * (1 / (1 + Delta_mu) - 1) =`

// momentLookups maps result fields to (section, entry) positions in the
// report. An empty label selects the section's unlabeled value. The report
// format is assumed stable per tool version, so any miss is fatal.
var momentLookups = []struct {
	field   string
	section string
	label   string
}{
	{"1L", "FULL 1L WITH TANBETA RESUMMATION", "sum"},
	{"1L_no_resum", "FULL 1L WITHOUT TANBETA RESUMMATION", ""},
	{"WHN", "1L APPROXIMATION WITH TANBETA RESUMMATION", "W-H-nu"},
	{"WHL", "1L APPROXIMATION WITH TANBETA RESUMMATION", "W-H-muL"},
	{"BHL", "1L APPROXIMATION WITH TANBETA RESUMMATION", "B-H-muL"},
	{"BHR", "1L APPROXIMATION WITH TANBETA RESUMMATION", "B-H-muR"},
	{"BLR", "1L APPROXIMATION WITH TANBETA RESUMMATION", "B-muL-muR"},
	{"2L", "2L BEST WITH TANBETA RESUMMATION", ""},
	{"2L_no_resum", "2L BEST WITHOUT TANBETA RESUMMATION", ""},
	{"2L_photonic", "PHOTONIC WITH TANBETA RESUMMATION", "sum"},
	{"2L_fermion", "FERMIONSFERMION APPROXIMATION WITH TANBETA RESUMMATION", "sum"},
	{"2L_a", "2LA 1L INSERTIONS INTO 1L SM DIAGRAM WITH TANBETA RESUMMATION", "sum"},
}

// gm2Convention assigns the sparse GM2 block indices. The numbering is a
// compatibility contract for downstream consumers.
var gm2Convention = []struct {
	index   int
	field   string
	comment string
}{
	{1, "1L", "1-loop result"},
	{2, "1L+2L", "2-loop result"},
	{9, "1L+2L_unc", "uncertainty for 2-loop result"},
	{10, "1L_no_resum", "1-loop without resummation"},
	{20, "1L+2L_no_resum", "2-loop without resummation"},
	{100, "delta_mu", "delta_mu"},
	{101, "WHN", "MI-approx W-H-nu"},
	{102, "WHL", "MI-approx W-H-L"},
	{103, "BHL", "MI-approx B-H-L"},
	{104, "BHR", "MI-approx B-H-R"},
	{105, "BLR", "MI-approx B-L-R"},
	{201, "2L_photonic", "2-loop photonic"},
	{202, "2L_fermion", "2-loop fermion/sfermion"},
	{203, "2L_a", "2-loop (a)"},
}

// section accumulates the entries found under one report heading. A line
// holding only a number is the section's unlabeled entry; "<label> <num>"
// lines are stored under their label. Later writes win, matching the
// calculator's own last-value-counts layout.
type section struct {
	named        map[string]float64
	unlabeled    float64
	hasUnlabeled bool
}

// MagneticMomentResult holds the values extracted and derived from one
// GM2Calc run, keyed by field name, plus the tool's version string.
type MagneticMomentResult struct {
	Version string
	Values  map[string]float64
}

// ParseMagneticMoment extracts the amu contributions from a GM2Calc
// detailed report. The best-value line is located first; the remainder of
// the report is segmented into named sections from which the individual
// contributions are pulled by exact section name and entry label.
func ParseMagneticMoment(output, version string) (MagneticMomentResult, []string, error) {
	result := MagneticMomentResult{Version: version}
	var warnings []string

	best, warn, err := firstMatch("1L+2L", reBestValue.FindAllStringSubmatch(output, -1))
	if err != nil {
		return result, warnings, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	sections := splitSections(output)

	values := make(map[string]float64)
	if values["1L+2L"], err = parseNum("1L+2L", best[1]); err != nil {
		return result, warnings, err
	}
	if values["1L+2L_unc"], err = parseNum("1L+2L_unc", best[2]); err != nil {
		return result, warnings, err
	}
	for _, l := range momentLookups {
		v, err := lookup(sections, l.section, l.label)
		if err != nil {
			return result, warnings, fmt.Errorf("%s: %w", l.field, err)
		}
		values[l.field] = v
	}

	values["1L+2L_no_resum"] = values["1L_no_resum"] + values["2L_no_resum"]

	tbCor, err := lookup(sections, "TANBETA CORRECTION", tanbetaCorrectionLabel)
	if err != nil {
		return result, warnings, fmt.Errorf("delta_mu: %w", err)
	}
	values["delta_mu"] = DeltaMu(tbCor, values["1L_no_resum"])

	result.Values = values
	return result, warnings, nil
}

// DeltaMu computes the tan(beta) correction factor from the printed
// correction term and the unresummed 1-loop value. The operation order is
// significant and must not be algebraically rearranged.
func DeltaMu(tbCor, oneLoopNoResum float64) float64 {
	return 1/(tbCor/oneLoopNoResum+1) - 1
}

// splitSections segments the report into named sections. A line starting
// with a letter or digit opens a section named by uppercasing the trimmed
// line and stripping every character that is not an uppercase letter,
// digit or space.
func splitSections(output string) map[string]*section {
	sections := make(map[string]*section)
	var current *section
	for _, line := range strings.Split(output, "\n") {
		switch {
		case reSectionStart.MatchString(line):
			tag := reTagStrip.ReplaceAllString(strings.ToUpper(strings.TrimSpace(line)), "")
			current = &section{named: make(map[string]float64)}
			sections[tag] = current
		case current == nil:
			// Lines before the first section contribute nothing.
		default:
			if m := reUnlabeledLine.FindStringSubmatch(line); m != nil {
				if v, err := slha.ParseFloat(m[1]); err == nil {
					current.unlabeled = v
					current.hasUnlabeled = true
				}
			} else if m := reLabeledLine.FindStringSubmatch(line); m != nil {
				if v, err := slha.ParseFloat(m[2]); err == nil {
					current.named[m[1]] = v
				}
			}
		}
	}
	return sections
}

// lookup pulls one entry out of a named section. An empty label selects
// the section's unlabeled value.
func lookup(sections map[string]*section, name, label string) (float64, error) {
	s, ok := sections[name]
	if !ok {
		return 0, fmt.Errorf("section %q not found in calculator output", name)
	}
	if label == "" {
		if !s.hasUnlabeled {
			return 0, fmt.Errorf("section %q has no plain value line", name)
		}
		return s.unlabeled, nil
	}
	v, ok := s.named[label]
	if !ok {
		return 0, fmt.Errorf("entry %q not found in section %q", label, name)
	}
	return v, nil
}

// Block re-encodes the result as the GM2 block using the sparse index
// convention, with the tool version recorded in the header comment.
func (r MagneticMomentResult) Block() *slha.Block {
	b := slha.NewBlock("GM2")
	b.Comment = fmt.Sprintf("calculated by GM2Calc v%s", r.Version)
	for _, c := range gm2Convention {
		b.SetFloat(c.index, r.Values[c.field], c.comment)
	}
	return b
}
