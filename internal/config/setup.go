package config

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"slhagen/internal/launcher"
)

// sdecayMarker must appear in the static SDecay input file; the file's
// physics content is otherwise opaque to this program.
const sdecayMarker = "SDECAY INPUT FILE"

// Toolset holds the exec adapters for every pipeline capability.
// Converter is nil when the sinderin section is not configured.
type Toolset struct {
	Spectrum  *launcher.SpectrumTool
	Relic     *launcher.RelicTool
	Moment    *launcher.MomentTool
	Decay     *launcher.DecayTool
	Converter *launcher.ConvertTool

	// SDecayInput is the validated static input file shipped alongside
	// this program.
	SDecayInput string
}

// Setup verifies every configured tool and assembles the toolset. The
// micrOMEGAs executable is compiled from the configured source file as
// part of setup.
func Setup(cfg *Config, runner *launcher.Runner) (*Toolset, error) {
	if _, err := exec.LookPath(cfg.External.SimSUSY); err != nil {
		return nil, fmt.Errorf("simsusy executable %q not found; check external.simsusy", cfg.External.SimSUSY)
	}

	gm2calc, err := resolveExecutable(cfg.External.GM2Calc)
	if err != nil {
		return nil, fmt.Errorf("GM2Calc executable %q not found; check external.gm2calc", cfg.External.GM2Calc)
	}

	sdecay, err := resolveExecutable(cfg.External.SDecay)
	if err != nil {
		return nil, fmt.Errorf("SDecay executable %q not found; check external.sdecay", cfg.External.SDecay)
	}
	sdecayInput, err := checkSDecayInput(cfg.External.SDecayInput)
	if err != nil {
		return nil, err
	}

	micromegasDir, micromegasExe, err := compileMicromegas(cfg.Micromegas, runner)
	if err != nil {
		return nil, err
	}

	ts := &Toolset{
		Spectrum:    &launcher.SpectrumTool{Runner: runner, Exe: cfg.External.SimSUSY, Calculator: cfg.Spectrum.Calculator},
		Relic:       &launcher.RelicTool{Runner: runner, Exe: micromegasExe, Dir: micromegasDir},
		Moment:      &launcher.MomentTool{Runner: runner, Exe: gm2calc},
		Decay:       &launcher.DecayTool{Runner: runner, Exe: sdecay},
		SDecayInput: sdecayInput,
	}
	if cfg.Sinderin.Configured() {
		ts.Converter = &launcher.ConvertTool{Runner: runner, Converter: cfg.Sinderin.Converter, UFOModel: cfg.Sinderin.UFOModel}
	}
	return ts, nil
}

// compileMicromegas copies the configured source file into the micrOMEGAs
// tree under the executable name and builds it with make, returning the
// installation directory and the executable path.
func compileMicromegas(mc MicromegasConfig, runner *launcher.Runner) (dir, exePath string, err error) {
	if _, err := exec.LookPath(mc.Make); err != nil {
		return "", "", fmt.Errorf("make executable %q not found", mc.Make)
	}
	dir, err = filepath.Abs(expandUser(mc.Dir))
	if err != nil {
		return "", "", err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("micrOMEGAs path %q not found", mc.Dir)
	}
	source := expandUser(mc.SourceFile)
	if info, err := os.Stat(source); err != nil || info.IsDir() {
		return "", "", fmt.Errorf("source for micrOMEGAs %q not found", mc.SourceFile)
	}

	exePath = filepath.Join(dir, mc.ExecutableName)
	newSource := exePath + filepath.Ext(source)
	if err := copyFile(source, newSource); err != nil {
		return "", "", fmt.Errorf("cannot copy micrOMEGAs source: %w", err)
	}
	command := []string{mc.Make, "-C", dir, "main=" + filepath.Base(newSource)}
	if _, err := runner.Run(command, "", false); err != nil {
		return "", "", fmt.Errorf("compilation of %s failed: %w", exePath, err)
	}
	if !isExecutable(exePath) {
		return "", "", fmt.Errorf("compilation of %s failed", exePath)
	}
	return dir, exePath, nil
}

// checkSDecayInput locates the static SDecay input file and validates it
// by the marker substring. An empty path defaults to sdecay.in next to
// the slhagen binary.
func checkSDecayInput(path string) (string, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", err
		}
		path = filepath.Join(filepath.Dir(exe), "sdecay.in")
	} else {
		path = expandUser(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("SDecay input file %q not found", path)
	}
	if !strings.Contains(string(content), sdecayMarker) {
		return "", fmt.Errorf("SDecay input file %q seems invalid", path)
	}
	return path, nil
}

// resolveExecutable expands a leading ~, makes the path absolute and
// verifies it names an executable.
func resolveExecutable(path string) (string, error) {
	abs, err := filepath.Abs(expandUser(path))
	if err != nil {
		return "", err
	}
	if !isExecutable(abs) {
		// Fall back to a PATH lookup for bare command names.
		if found, err := exec.LookPath(path); err == nil {
			return found, nil
		}
		return "", fmt.Errorf("%s is not executable", abs)
	}
	return abs, nil
}

func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0111 != 0
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
