package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Extract a title and H1-H4 outline from documents",
	Long: `docoutline reads PDF, Markdown, HTML, DOCX and plain text documents and
produces a title plus a flat list of headings with their level and page.

An embedded PDF table of contents is used when present. Otherwise heading
levels are inferred from font sizes, largest first.`,
	Version:      version.String(),
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docoutline/config.yaml)",
	)
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "json", "log format: json or text")

	rootCmd.AddCommand(versionCmd)
}

// persistentKeys maps config keys to the root flags that override them.
var persistentKeys = map[string]string{
	"log_level":  "log-level",
	"log_format": "log-format",
}

// loadConfig resolves the configuration for cmd. keys maps config keys to
// command flag names; a flag overrides its key only when set.
func loadConfig(cmd *cobra.Command, keys map[string]string) (config.Config, *slog.Logger, error) {
	loader := config.NewLoader()
	for _, set := range []map[string]string{persistentKeys, keys} {
		for key, name := range set {
			if err := loader.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return config.Config{}, nil, err
			}
		}
	}

	cfg, err := loader.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, cfg.NewLogger(cmd.ErrOrStderr()), nil
}

// newOrchestrator wires the extractor, writer and stats recorder into a
// worker pool sized by cfg. The caller starts and stops it.
func newOrchestrator(cfg config.Config, log *slog.Logger) (*pipeline.Orchestrator, *outline.Extractor, error) {
	format, err := pipeline.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, nil, err
	}
	extractor := outline.NewExtractor(nil, log)
	orch := pipeline.NewOrchestrator(
		pipeline.Options{
			WorkerCount:  cfg.WorkerCount,
			MaxQueueSize: cfg.MaxQueueSize,
			JobTTL:       cfg.JobTTL,
		},
		extractor,
		pipeline.NewWriter(format, cfg.ValidateOutput),
		stats.NewRecorder(0),
		log,
	)
	return orch, extractor, nil
}

// addPipelineFlags registers the flags shared by batch and watch.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "directory of documents to read (default: input_dir)")
	cmd.Flags().String("out", "", "directory for outline files (default: output_dir)")
	cmd.Flags().Int("workers", 0, "number of concurrent extractions (default: worker_count)")
	cmd.Flags().String("format", "", "output file format: json or yaml (default: output_format)")
}

var pipelineKeys = map[string]string{
	"input_dir":     "input",
	"output_dir":    "out",
	"worker_count":  "workers",
	"output_format": "format",
}
