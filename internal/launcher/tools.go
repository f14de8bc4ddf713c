package launcher

import (
	"path/filepath"
	"strings"
)

// SpectrumTool runs the spectrum generator: "<exe> run <calculator>
// [--v1] <input> <output>". Its output is not echoed; the generated
// spectrum files are the artifact.
type SpectrumTool struct {
	Runner     *Runner
	Exe        string
	Calculator string
}

// Generate produces a spectrum file from input. With legacy set, the
// generator is asked for SLHA1-format output via --v1.
func (t *SpectrumTool) Generate(input, output string, legacy bool) error {
	command := []string{t.Exe, "run", t.Calculator}
	if legacy {
		command = append(command, "--v1")
	}
	command = append(command, input, output)
	_, err := t.Runner.Run(command, "", false)
	return err
}

// RelicTool runs the compiled micrOMEGAs executable against a legacy
// spectrum file, with the working directory set to the micrOMEGAs
// installation directory.
type RelicTool struct {
	Runner *Runner
	Exe    string
	Dir    string
}

// Compute runs the calculator and returns its report text.
func (t *RelicTool) Compute(spectrum string) (string, error) {
	abs, err := filepath.Abs(spectrum)
	if err != nil {
		return "", err
	}
	return t.Runner.Run([]string{t.Exe, abs}, t.Dir, true)
}

// MomentTool runs GM2Calc.
type MomentTool struct {
	Runner *Runner
	Exe    string
}

// Version queries the tool's version string.
func (t *MomentTool) Version() (string, error) {
	out, err := t.Runner.Run([]string{t.Exe, "--version"}, "", true)
	return strings.TrimSpace(out), err
}

// Compute runs the calculator on a prepared input file and returns its
// report text.
func (t *MomentTool) Compute(input string) (string, error) {
	return t.Runner.Run([]string{t.Exe, "--slha-input-file=" + input}, "", true)
}

// DecayTool runs SDecay, which takes no arguments and reads and writes
// fixed filenames in the current working directory.
type DecayTool struct {
	Runner *Runner
	Exe    string
}

// Run invokes the calculator.
func (t *DecayTool) Run() error {
	_, err := t.Runner.Run([]string{t.Exe}, "", true)
	return err
}

// ConvertTool runs the model-converter script. Its stdout is the artifact.
type ConvertTool struct {
	Runner    *Runner
	Converter string
	UFOModel  string
}

// Convert runs the converter on a merged spectrum file and returns its
// full output.
func (t *ConvertTool) Convert(path string) (string, error) {
	return t.Runner.Run([]string{"python", t.Converter, t.UFOModel, path}, "", false)
}
