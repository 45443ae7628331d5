package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/report"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Print the outline of one or more documents",
	Long: `Extract the title and outline of each FILE and print it to stdout.

Output is json or yaml in the same shape batch writes to disk, or an indented
heading tree with --output tree. A file that cannot be read still prints a
result whose title is the file name and whose outline is empty.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}

		extractor := outline.NewExtractor(nil, log)
		out := cmd.OutOrStdout()

		format := extractOutput
		if format == "" {
			format = cfg.OutputFormat
		}
		if format == "tree" {
			for _, path := range args {
				report.FormatTree(out, extractor.Extract(path))
			}
			return nil
		}

		f, err := pipeline.ParseFormat(format)
		if err != nil {
			return err
		}
		writer := pipeline.NewWriter(f, cfg.ValidateOutput)
		for i, path := range args {
			if f == pipeline.FormatYAML && i > 0 {
				fmt.Fprintln(out, "---")
			}
			res := extractor.Extract(path)
			if err := writer.Check(res); err != nil {
				log.Warn("result does not match outline schema", "file", path, "error", err)
			}
			if err := writer.Encode(out, res); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output format: json, yaml or tree (default: output_format)")

	rootCmd.AddCommand(extractCmd)
}
