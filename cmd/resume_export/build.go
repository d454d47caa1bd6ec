package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-export/internal/command"
	"github.com/jonathan/resume-export/internal/config"
	"github.com/jonathan/resume-export/internal/observability"
	"github.com/jonathan/resume-export/internal/pipeline"
)

// newRunner is swapped out by tests so no external tools are started.
var newRunner = func() command.Runner { return command.NewExecRunner() }

type buildFlags struct {
	configPath string
	github     string
	avatar     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "resume_export",
		Short: "Build the résumé PDF from the LaTeX template",
		Long: `Builds output/resume.pdf: resolves the avatar image, converts SVG icons to PDF,
stages the LaTeX template, compiles it with xelatex and removes every
intermediate file from the output directory.

Configuration is read from defaults, then --config, then RESUME_* environment
variables, then explicitly set flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&flags.github, "github", "", "GitHub handle whose avatar is fetched (optional)")
	cmd.Flags().StringVar(&flags.avatar, "avatar", "", "Local avatar image that takes priority over the fetched one (optional)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print detailed debug information")

	return cmd
}

// resolveConfig layers explicitly set flags over the file and environment configuration.
func resolveConfig(cmd *cobra.Command, flags *buildFlags) (config.Config, error) {
	cfg, err := config.Resolve(flags.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flags.verbose
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

func runBuild(cmd *cobra.Command, flags *buildFlags) error {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger := log.New(out, "", 0)
	if cfg.Verbose && flags.configPath != "" {
		logger.Printf("[VERBOSE] Loaded config from: %s", flags.configPath)
	}

	report, err := pipeline.RunPipeline(cmd.Context(), pipeline.RunOptions{
		Config:       cfg,
		Handle:       flags.github,
		CustomAvatar: flags.avatar,
		Runner:       newRunner(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(out)
		printer.PrintBuildReport(report)
		printer.PrintIconFailures(report.Icons)
		printer.PrintCleanupFailures(report.Cleanup)
	}

	if report.Succeeded() {
		logger.Printf("Resume built: %s", report.Compile.PDFPath)
	} else {
		logger.Printf("Warning: %s was not produced", cfg.ArtifactName)
	}
	return nil
}
