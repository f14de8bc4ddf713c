// Package pipeline sequences the calculator stages: spectrum generation,
// relic density, anomalous magnetic moment, decays, merge and model
// conversion. The stages are strictly sequential because each one consumes
// files or values materialized by the previous one; any failure aborts the
// whole run, since a partial output document is not usable downstream.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"slhagen/internal/report"
	"slhagen/internal/slha"
)

// Fixed filenames imposed by SDecay, which reads and writes them in the
// current working directory.
const (
	sdecayInput  = "SD_leshouches.in"
	sdecayOutput = "sdecay_slha.out"
)

// dummyBlock is appended to the SDecay input; without it the calculator
// rejects minimal spectrum files.
const dummyBlock = "Block DUMMY #\n     1     0.00000000E+00   #\n"

// SpectrumGenerator produces a spectrum file from a physics input file,
// in extended (SLHA2) or legacy (SLHA1) format.
type SpectrumGenerator interface {
	Generate(input, output string, legacy bool) error
}

// RelicCalculator computes the dark-matter relic density and detection
// cross sections for a legacy spectrum file, returning its report text.
type RelicCalculator interface {
	Compute(spectrum string) (string, error)
}

// MomentCalculator computes the anomalous magnetic moment.
type MomentCalculator interface {
	Version() (string, error)
	Compute(input string) (string, error)
}

// DecayCalculator computes particle decays through fixed filenames in the
// current working directory.
type DecayCalculator interface {
	Run() error
}

// ModelConverter converts a merged spectrum file, returning the converted
// text.
type ModelConverter interface {
	Convert(path string) (string, error)
}

// Pipeline drives one end-to-end run. Converter may be nil, in which case
// the conversion stage fails with a configuration error.
type Pipeline struct {
	Log       *logrus.Logger
	Spectrum  SpectrumGenerator
	Relic     RelicCalculator
	Moment    MomentCalculator
	Decay     DecayCalculator
	Converter ModelConverter

	// Banner, when set, is called with a phase description before each
	// stage.
	Banner func(string)
}

// Run executes all six stages for one input file. Output files are named
// by substituting the input file's extension and are created in the
// current working directory.
func (p *Pipeline) Run(input string) error {
	slha1 := withSuffix(input, ".slha1")
	slha2 := withSuffix(input, ".slha2")

	p.banner("Generate spectrum (SLHA1 and SLHA2)")
	if err := p.Spectrum.Generate(input, slha2, false); err != nil {
		return err
	}
	if err := p.Spectrum.Generate(input, slha1, true); err != nil {
		return err
	}

	p.banner("Compute relic density and detection cross sections")
	relic, err := p.runRelic(slha1)
	if err != nil {
		return err
	}

	p.banner("Compute anomalous magnetic moment")
	moment, err := p.runMoment(input, slha1)
	if err != nil {
		return err
	}

	p.banner("Compute decay widths")
	dcinfo, decays, err := p.runDecay(input, slha1)
	if err != nil {
		return err
	}

	p.banner("Merge results")
	if err := merge(slha2, relic, moment, dcinfo, decays); err != nil {
		return err
	}

	p.banner("Convert to sinderin")
	return p.convert(input, slha2)
}

// runRelic runs the relic-density calculator and parses its report.
func (p *Pipeline) runRelic(slha1 string) (report.RelicDensityResult, error) {
	output, err := p.Relic.Compute(slha1)
	if err != nil {
		return report.RelicDensityResult{}, err
	}
	result, warnings, err := report.ParseRelicDensity(output)
	p.warn(warnings)
	return result, err
}

// runMoment queries the calculator version, prepares a derived input copy
// of the legacy spectrum with detailed output requested, and parses the
// resulting report.
func (p *Pipeline) runMoment(input, slha1 string) (report.MagneticMomentResult, error) {
	var zero report.MagneticMomentResult
	version, err := p.Moment.Version()
	if err != nil {
		return zero, err
	}
	doc, err := slha.ParseFile(slha1)
	if err != nil {
		return zero, err
	}
	doc.SetInt("GM2CalcConfig", 0, 1) // request detailed output
	gm2in := withSuffix(input, ".gm2in")
	if err := doc.WriteFile(gm2in); err != nil {
		return zero, err
	}
	output, err := p.Moment.Compute(gm2in)
	if err != nil {
		return zero, err
	}
	result, warnings, err := report.ParseMagneticMoment(output, version)
	p.warn(warnings)
	return result, err
}

// runDecay copies the legacy spectrum to the fixed SDecay input name,
// appends the dummy block, runs the calculator and extracts the DCINFO
// block and every decay table from its output. The raw output is kept
// beside the other artifacts for inspection.
func (p *Pipeline) runDecay(input, slha1 string) (*slha.Block, []*slha.Decay, error) {
	if err := copyFile(slha1, sdecayInput); err != nil {
		return nil, nil, err
	}
	if err := appendString(sdecayInput, dummyBlock); err != nil {
		return nil, nil, err
	}
	if err := p.Decay.Run(); err != nil {
		return nil, nil, err
	}
	doc, err := slha.ParseFile(sdecayOutput)
	if err != nil {
		return nil, nil, err
	}
	if err := os.Remove(sdecayInput); err != nil {
		return nil, nil, err
	}
	if err := os.Rename(sdecayOutput, withSuffix(input, ".sdecay_raw")); err != nil {
		return nil, nil, err
	}

	dcinfo := doc.Block("DCINFO")
	if dcinfo == nil {
		return nil, nil, fmt.Errorf("cannot find DCINFO in SDecay output")
	}
	decays := doc.Decays()
	dcinfo.SetPreComment("#")
	for _, d := range decays {
		d.SetPreComment("#")
	}
	return dcinfo, decays, nil
}

// merge appends the result blocks to the extended spectrum file in the
// fixed order and writes it back, preserving all original comments.
func merge(slha2 string, relic report.RelicDensityResult, moment report.MagneticMomentResult, dcinfo *slha.Block, decays []*slha.Decay) error {
	doc, err := slha.ParseFile(slha2)
	if err != nil {
		return err
	}
	doc.Add(relic.Block())
	doc.Add(moment.Block())
	doc.Add(dcinfo)
	for _, d := range decays {
		doc.Add(d)
	}
	return doc.WriteFile(slha2)
}

// convert runs the model converter on the merged file and writes its
// output verbatim to the .sinderin sibling.
func (p *Pipeline) convert(input, slha2 string) error {
	if p.Converter == nil {
		return fmt.Errorf("sinderin is not configured")
	}
	output, err := p.Converter.Convert(slha2)
	if err != nil {
		return err
	}
	return os.WriteFile(withSuffix(input, ".sinderin"), []byte(output), 0644)
}

func (p *Pipeline) banner(msg string) {
	if p.Banner != nil {
		p.Banner(msg)
	}
}

func (p *Pipeline) warn(warnings []string) {
	if p.Log == nil {
		return
	}
	for _, w := range warnings {
		p.Log.Warn(w)
	}
}

// withSuffix maps an input path to a sibling artifact name in the current
// working directory, substituting the file extension.
func withSuffix(input, ext string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func appendString(path, s string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
