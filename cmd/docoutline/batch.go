package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/report"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract outlines for every document in a directory",
	Long: `Extract every document in the input directory whose extension is listed
in extensions and write one <name>.json (or .yaml) per document into the
output directory. A failed file is reported and the run continues.`,
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
		report.FormatSummary(cmd.OutOrStdout(), sum)
		if err != nil {
			return err
		}
		if sum.Failed > 0 {
			return fmt.Errorf("%d of %d files failed", sum.Failed, sum.Files)
		}
		return nil
	},
}

func init() {
	addPipelineFlags(batchCmd)

	rootCmd.AddCommand(batchCmd)
}
