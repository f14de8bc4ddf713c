// Command slhagen drives the MSSM electroweak spectrum pipeline: it runs
// the spectrum generator, the relic-density, magnetic-moment and decay
// calculators in sequence, merges their results into one SLHA file and
// converts it with the configured model converter.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"slhagen/internal/config"
	"slhagen/internal/launcher"
	"slhagen/internal/pipeline"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:     "slhagen [flags] INPUT",
		Short:   "MSSM electroweak spectrum generation pipeline",
		Args:    cobra.ExactArgs(1),
		Version: version,

		// Errors are logged where they occur; cobra only sets the exit
		// status.
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, args[0])
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "configuration file")
	return cmd
}

func run(configFile, input string) error {
	log := newLogger()

	message("Configuration")
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Error(err)
		return err
	}
	runner := launcher.NewRunner(log)
	tools, err := config.Setup(cfg, runner)
	if err != nil {
		log.Error(err)
		return err
	}

	if _, err := os.Stat(input); err != nil {
		log.Errorf("input file not found: %s", input)
		return err
	}

	p := &pipeline.Pipeline{
		Log:       log,
		Spectrum:  tools.Spectrum,
		Relic:     tools.Relic,
		Moment:    tools.Moment,
		Decay:     &decayWithInput{tool: tools.Decay, staticInput: tools.SDecayInput},
		Converter: converterOrNil(tools),
		Banner:    message,
	}
	if err := p.Run(input); err != nil {
		log.Error(err)
		return err
	}
	return nil
}

// decayWithInput reasserts the static SDecay input file before each run:
// SDecay expects it in the current working directory.
type decayWithInput struct {
	tool        *launcher.DecayTool
	staticInput string
}

func (d *decayWithInput) Run() error {
	if err := copyIntoCwd(d.staticInput); err != nil {
		return err
	}
	return d.tool.Run()
}

func copyIntoCwd(path string) error {
	dst, err := filepath.Abs("sdecay.in")
	if err != nil {
		return err
	}
	src, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, 0644)
}

// converterOrNil keeps the pipeline's nil check meaningful: a nil struct
// pointer inside a non-nil interface would defeat it.
func converterOrNil(tools *config.Toolset) pipeline.ModelConverter {
	if tools.Converter == nil {
		return nil
	}
	return tools.Converter
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return log
}

// message prints a phase separator banner.
func message(msg string) {
	pad := 77 - len(msg)
	if pad < 1 {
		pad = 1
	}
	fmt.Println()
	fmt.Println(strings.Repeat("#", 80))
	fmt.Printf("# %s%s#\n", msg, strings.Repeat(" ", pad))
	fmt.Println(strings.Repeat("#", 80))
}
