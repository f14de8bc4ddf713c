package report

import (
	"regexp"

	"slhagen/internal/slha"
)

var (
	// reOmega matches a "relic density" line followed by an
	// "Omega = <value>" assignment on the next line.
	reOmega = regexp.MustCompile(`(?m)relic density.*$\s+^.*Omega\s*=\s*` + num)

	// reProton and reNeutron match the direct-detection cross-section
	// lines: the nucleon token followed by SI and SD values in pb.
	reProton  = regexp.MustCompile(`proton\s+SI\s+` + num + `\s+SD\s+` + num)
	reNeutron = regexp.MustCompile(`neutron\s+SI\s+` + num + `\s+SD\s+` + num)
)

// RelicDensityResult holds the quantities extracted from one micrOMEGAs
// run. Cross sections are in pb, as printed by the calculator.
type RelicDensityResult struct {
	OmegaH2   float64
	ProtonSI  float64
	ProtonSD  float64
	NeutronSI float64
	NeutronSD float64
}

// ParseRelicDensity extracts the relic density and the nucleon cross
// sections from a micrOMEGAs report. Every field is required; a missing
// field aborts the parse. Duplicate matches are returned as warnings and
// resolved by taking the first occurrence.
func ParseRelicDensity(output string) (RelicDensityResult, []string, error) {
	var result RelicDensityResult
	var warnings []string

	omega, warn, err := firstMatch("omega_DM", reOmega.FindAllStringSubmatch(output, -1))
	if err != nil {
		return result, warnings, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}
	proton, warn, err := firstMatch("proton", reProton.FindAllStringSubmatch(output, -1))
	if err != nil {
		return result, warnings, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}
	neutron, warn, err := firstMatch("neutron", reNeutron.FindAllStringSubmatch(output, -1))
	if err != nil {
		return result, warnings, err
	}
	if warn != "" {
		warnings = append(warnings, warn)
	}

	fields := []struct {
		dst   *float64
		name  string
		token string
	}{
		{&result.OmegaH2, "omega_h2", omega[1]},
		{&result.ProtonSI, "proton_si", proton[1]},
		{&result.ProtonSD, "proton_sd", proton[2]},
		{&result.NeutronSI, "neutron_si", neutron[1]},
		{&result.NeutronSD, "neutron_sd", neutron[2]},
	}
	for _, f := range fields {
		v, err := parseNum(f.name, f.token)
		if err != nil {
			return result, warnings, err
		}
		*f.dst = v
	}
	return result, warnings, nil
}

// Block re-encodes the result as the DM block. The index convention is a
// compatibility contract for downstream consumers.
func (r RelicDensityResult) Block() *slha.Block {
	b := slha.NewBlock("DM")
	b.Comment = "calculated by micrOMEGAs"
	b.SetFloat(1, r.OmegaH2, "OmegaDM h^2")
	b.SetFloat(2, r.ProtonSI, "proton SI [pb]")
	b.SetFloat(3, r.ProtonSD, "proton SD [pb]")
	b.SetFloat(4, r.NeutronSI, "neutron SI [pb]")
	b.SetFloat(5, r.NeutronSD, "neutron SD [pb]")
	return b
}
