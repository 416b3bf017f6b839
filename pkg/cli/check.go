package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/axle/pkg/corpus"
)

// newCheckCommand creates a new check command
func newCheckCommand() *Command {
	fs := flag.NewFlagSet("check", flag.ExitOnError)

	var (
		dir            = fs.String("dir", ".", "Directory containing the corpus (someip/ and diag/ subtrees)")
		configFile     = fs.String("config", "", "Path to check config file (.axle.yaml)")
		interfacesDir  = fs.String("interfaces", "", "Interface documents directory (overrides config)")
		diagnosticsDir = fs.String("diagnostics", "", "Diagnostic documents directory (overrides config)")
		format         = fs.String("format", "", "Output format: text, json, github")
		concurrency    = fs.Int("concurrency", 0, "Parallel document evaluations (overrides config)")
		initConfig     = fs.Bool("init", false, "Write a default .axle.yaml into the corpus directory and exit")
		verbose        = fs.Bool("verbose", false, "Log every document as it is checked")
	)

	return &Command{
		Name:        "check",
		Description: "Check a corpus of service definitions for consistency",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			return runCheck(*dir, *configFile, *interfacesDir, *diagnosticsDir, *format,
				*concurrency, *initConfig, *verbose)
		},
	}
}

func runCheck(dir, configFile, interfacesDir, diagnosticsDir, format string,
	concurrency int, initConfig, verbose bool) error {
	if initConfig {
		path := filepath.Join(dir, ".axle.yaml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := corpus.SaveCheckConfig(corpus.DefaultCheckConfig(), path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	// Load configuration
	var config *corpus.CheckConfig
	var err error
	if configFile != "" {
		config, err = corpus.LoadCheckConfig(configFile)
	} else {
		config, err = corpus.LoadCheckConfigFromDir(dir)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags override the config file
	if format == "" {
		format = config.Output
	}
	if concurrency <= 0 {
		concurrency = config.Check.Concurrency
	}
	ifaceDir, diagDir := config.Corpus.Resolve(dir)
	if interfacesDir != "" {
		ifaceDir = interfacesDir
	}
	if diagnosticsDir != "" {
		diagDir = diagnosticsDir
	}

	// Per-document log lines go to stderr so the rendered report owns
	// stdout. Rejections always show; the rest only with -verbose.
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	// One-shot runs carry no outcome cache; only the daemon and the watch
	// loop live long enough for one to pay off.
	source := corpus.NewDirectorySource(ifaceDir, diagDir)
	runner := corpus.NewRunner(source, log, corpus.Options{Concurrency: concurrency})

	report, err := runner.Run(context.Background(), "cli")
	if err != nil {
		return fmt.Errorf("corpus check did not complete: %w", err)
	}

	if err := corpus.Render(os.Stdout, format, report); err != nil {
		return err
	}

	if !report.Passed {
		return fmt.Errorf("corpus check failed with %d violations", len(report.Violations))
	}
	return nil
}
