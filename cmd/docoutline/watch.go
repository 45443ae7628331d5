package main

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process a directory, then keep processing files dropped into it",
	Long: `Run a batch over the documents already in the input directory, then watch
it and extract each new document once its size stops changing. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd, pipelineKeys)
		if err != nil {
			return err
		}
		if err := cfg.ValidateDirs(); err != nil {
			return err
		}

		orch, _, err := newOrchestrator(cfg, log)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		orch.Start(ctx)
		defer orch.Stop()

		sum, err := orch.Batch(ctx, cfg.InputDir, cfg.OutputDir, cfg.Extensions)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		report.FormatSummary(cmd.OutOrStdout(), sum)

		watcher := pipeline.NewWatcher(orch, pipeline.WatchOptions{
			InputDir:   cfg.InputDir,
			OutputDir:  cfg.OutputDir,
			Extensions: cfg.Extensions,
			Settle:     cfg.WatchSettle,
			Attempts:   cfg.WatchAttempts,
		}, log)
		return watcher.Run(ctx)
	},
}

func init() {
	addPipelineFlags(watchCmd)

	rootCmd.AddCommand(watchCmd)
}
