package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salesml/internal/config"
	"github.com/YuminosukeSato/salesml/pkg/errors"
	"github.com/YuminosukeSato/salesml/pkg/log"
)

// annotationCreatesConfig marks commands that may run before --config exists.
const annotationCreatesConfig = "salesml/creates-config"

// app carries the state shared by the commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfgFile    string
	cpuProfile string
	cfg        *config.Config
	prof       interface{ Stop() }
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "salesml",
		Short:         "Sales prediction and item suggestion",
		Long:          `salesml fits an RBF support vector regression to daily sales data to predict a future value, and analyses bills to suggest an item to sell alongside the worst seller.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.stopProfile()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ~/.salesml/config.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-format", "json", "log format: json or console")
	pf.StringVar(&a.cpuProfile, "cpuprofile", "", "write a CPU profile to this directory")

	root.AddCommand(
		newPredictCmd(a),
		newSuggestCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration for cmd, installs the logger and starts
// profiling when requested.
func (a *app) setup(cmd *cobra.Command) error {
	cfgFile := a.cfgFile
	if cmd.Annotations[annotationCreatesConfig] == "true" {
		// the file is about to be written
		if _, err := os.Stat(cfgFile); err != nil {
			cfgFile = ""
		}
	}
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := log.SetupLoggerWriter(a.stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	if a.cpuProfile != "" {
		a.prof = profile.Start(profile.CPUProfile, profile.ProfilePath(a.cpuProfile), profile.Quiet, profile.NoShutdownHook)
	}
	log.GetLoggerWithName("cli").Debug("Configuration loaded",
		"command", cmd.Name(),
		"config_file", a.cfgFile,
	)
	return nil
}

func (a *app) stopProfile() {
	if a.prof != nil {
		a.prof.Stop()
		a.prof = nil
	}
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.Execute()
	a.stopProfile()
	if err != nil {
		log.GetLoggerWithName("cli").Error("Command failed", log.ErrorKey, err)
		fmt.Fprintln(stderr, formatError(err))
		return 1
	}
	return 0
}

// formatError renders err for the terminal, naming the failing stage when known.
func formatError(err error) string {
	if stage := errors.StageOf(err); stage != "" {
		return fmt.Sprintf("✗ Error: %s: %v", stage, err)
	}
	return fmt.Sprintf("✗ Error: %v", err)
}
