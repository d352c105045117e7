// Package main provides the CLI entry point for vidauth.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/vidauth/internal/config"
	"github.com/five82/vidauth/internal/engine"
	"github.com/five82/vidauth/internal/ffmpeg"
	"github.com/five82/vidauth/internal/logging"
	"github.com/five82/vidauth/internal/reporter"
)

const (
	appName    = "vidauth"
	appVersion = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// globalArgs holds the flags shared by every subcommand.
type globalArgs struct {
	configPath string
	storePath  string
	outputDir  string
	logDir     string
	hash       string
	noLog      bool
	verbose    bool
	json       bool
}

func newRootCmd() *cobra.Command {
	var ga globalArgs

	root := &cobra.Command{
		Use:           appName,
		Short:         "Seal videos against a baseline and verify candidates",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&ga.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&ga.storePath, "store", "s", "", fmt.Sprintf("Baseline store file (default %s)", config.DefaultStorePath))
	pf.StringVarP(&ga.outputDir, "output", "o", "", fmt.Sprintf("Output directory (default %s)", config.DefaultOutputDir))
	pf.StringVarP(&ga.logDir, "log-dir", "l", "", "Log directory (defaults to OUTPUT/logs)")
	pf.BoolVar(&ga.noLog, "no-log", false, "Disable log file creation")
	pf.BoolVarP(&ga.verbose, "verbose", "v", false, "Enable verbose output for troubleshooting")
	pf.BoolVar(&ga.json, "json", false, "Emit NDJSON progress events instead of terminal output")

	root.AddCommand(
		newStoreCmd(&ga),
		newVerifyCmd(&ga),
		newExtractCmd(&ga),
		newInspectCmd(&ga),
		newConfigCmd(&ga),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
}

// session bundles what a subcommand needs to run.
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	reporter reporter.Reporter
	engine   *engine.Engine
}

func (s *session) Close() {
	_ = s.logger.Close()
}

// loadConfig builds the configuration from the config file, if any, and
// applies explicit flags on top.
func (ga *globalArgs) loadConfig(apply func(*config.Config)) (*config.Config, error) {
	cfg := config.NewConfig()
	if ga.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(ga.configPath); err != nil {
			return nil, err
		}
	}

	if ga.storePath != "" {
		cfg.StorePath = ga.storePath
	}
	if ga.outputDir != "" {
		cfg.OutputDir = ga.outputDir
	}
	if ga.logDir != "" {
		cfg.LogDir = ga.logDir
	}
	if ga.hash != "" {
		cfg.HashAlgorithm = ga.hash
	}
	if apply != nil {
		apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (ga *globalArgs) open(mode string, apply func(*config.Config)) (*session, error) {
	cfg, err := ga.loadConfig(apply)
	if err != nil {
		return nil, err
	}

	ffmpegPath, err := ffmpeg.Locate()
	if err != nil {
		return nil, fmt.Errorf("%w (install ffmpeg or set FFMPEG_PATH)", err)
	}
	ffmpeg.Binary = ffmpegPath

	logger, err := logging.Setup(cfg.GetLogDir(), mode, ga.verbose, ga.noLog)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	logger.Info("configuration",
		"store", cfg.StorePath,
		"output_dir", cfg.OutputDir,
		"hash_algorithm", cfg.HashAlgorithm,
		"record_subject", cfg.RecordSubject,
		"probe", cfg.Metadata.Probe,
		"codec", cfg.Watermark.Codec,
		"ffmpeg", ffmpegPath)

	var ui reporter.Reporter
	if ga.json {
		jr := reporter.NewJSONReporter()
		jr.SetVerbose(ga.verbose)
		ui = jr
	} else {
		tr := reporter.NewTerminalReporter()
		tr.SetVerbose(ga.verbose)
		ui = tr
	}
	var audit reporter.Reporter
	if logger.FilePath() != "" {
		audit = reporter.NewAuditReporter(logger.Slog())
	}
	rep := reporter.NewCompositeReporter(ui, audit)
	if path := logger.FilePath(); path != "" {
		rep.Verbose(fmt.Sprintf("Logging to %s", path))
	}

	eng, err := engine.New(cfg, engine.WithLogger(logger.Slog()), engine.WithReporter(rep))
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, reporter: rep, engine: eng}, nil
}
