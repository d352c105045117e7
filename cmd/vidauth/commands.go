package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/vidauth/internal/config"
	"github.com/five82/vidauth/internal/discovery"
	"github.com/five82/vidauth/internal/processing"
)

func newStoreCmd(ga *globalArgs) *cobra.Command {
	var (
		suffix   string
		subject  string
		template string
		codec    string
		noAudio  bool
	)

	cmd := &cobra.Command{
		Use:   "store <input>...",
		Short: "Record baselines and write watermarked copies",
		Long: `Record a baseline for each input video and write a sealed copy whose
first frame carries the watermark text. Inputs may be files or directories;
directories are scanned for video files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ga.open(string(processing.ModeStore), func(c *config.Config) {
				if subject != "" {
					c.RecordSubject = config.Subject(subject)
				}
				if template != "" {
					c.Watermark.Template = template
				}
				if codec != "" {
					c.Watermark.Codec = config.Codec(codec)
				}
				if noAudio {
					c.Watermark.CopyAudio = false
				}
			})
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := discovery.ResolveInputs(args, discovery.Filter{StemSuffix: suffix}, s.logger.Slog())
			if err != nil {
				return err
			}

			runner := processing.NewRunner(s.engine, s.reporter, s.logger.Slog())
			batch, err := runner.StoreVideos(cmd.Context(), files)
			if err != nil {
				return err
			}
			return batchError(batch)
		},
	}

	f := cmd.Flags()
	f.StringVar(&suffix, "suffix", "", "Only take directory files whose name stem ends with this suffix (e.g. _unedited)")
	f.StringVar(&ga.hash, "hash", "", "Content digest for new baselines: sha256 or blake3")
	f.StringVar(&subject, "subject", "", "File the baseline fingerprints: input or output")
	f.StringVar(&template, "template", "", "Watermark text template ({id}, {filename}, {stem})")
	f.StringVar(&codec, "codec", "", "Lossless encoder for sealed copies: libx264rgb or ffv1")
	f.BoolVar(&noAudio, "no-audio", false, "Do not copy audio into sealed copies")
	return cmd
}

func newVerifyCmd(ga *globalArgs) *cobra.Command {
	var reportPath, csvPath string

	cmd := &cobra.Command{
		Use:   "verify <input>...",
		Short: "Verify videos against their recorded baselines",
		Long: `Verify each input against the baseline recorded for the video ID in its
filename. A video is AUTHENTIC only when its hash, metadata and watermark
match and its device tags agree. Batch results are written to a JSON report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ga.open(string(processing.ModeVerify), func(c *config.Config) {
				if reportPath != "" {
					c.Report.Path = reportPath
				}
				if csvPath != "" {
					c.Report.CSVPath = csvPath
				}
			})
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := discovery.ResolveInputs(args, discovery.Filter{}, s.logger.Slog())
			if err != nil {
				return err
			}

			runner := processing.NewRunner(s.engine, s.reporter, s.logger.Slog())
			batch, err := runner.VerifyVideos(cmd.Context(), files)
			if err != nil {
				return err
			}
			return batchError(batch)
		},
	}

	f := cmd.Flags()
	f.StringVar(&reportPath, "report", "", "JSON report path (defaults to OUTPUT/verification_report.json)")
	f.StringVar(&csvPath, "csv", "", "Also write the report as CSV to this path")
	return cmd
}

func newExtractCmd(ga *globalArgs) *cobra.Command {
	var maxChars int

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Read the watermark text from a video's first frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ga.open("extract", nil)
			if err != nil {
				return err
			}
			defer s.Close()

			_, err = s.engine.ExtractWatermark(cmd.Context(), args[0], maxChars)
			return err
		},
	}

	cmd.Flags().IntVarP(&maxChars, "max-chars", "n", 0,
		fmt.Sprintf("Characters to read (default %d)", config.DefaultBlindMaxChars))
	return cmd
}

func newInspectCmd(ga *globalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the fingerprints, stream info and baseline of a video as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ga.open("inspect", nil)
			if err != nil {
				return err
			}
			defer s.Close()

			ins, err := s.engine.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ins)
		},
	}
}

func newConfigCmd(ga *globalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "config <path>",
		Short: "Write the effective configuration as YAML",
		Long: `Write the configuration that store and verify would run with, after
applying the config file and flags, to path. The result can be passed back
with --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ga.loadConfig(nil)
			if err != nil {
				return err
			}
			if err := cfg.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", args[0])
			return nil
		},
	}
}

// batchError turns per-file failures into a non-zero exit. TAMPERED
// verdicts are results, not failures.
func batchError(batch *processing.BatchResult) error {
	if failed := batch.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(batch.Files))
	}
	return nil
}
