package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/logger"
	"github.com/jonesrussell/north-cloud/civic-classifier/internal/processor"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		input       string
		output      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze newline-delimited JSON requests",
		Long: `Read one JSON request per line and write one JSON response per line,
in input order. Malformed lines produce a failed response at their
position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := a.setup(cmd.Context())
			if err != nil {
				return err
			}

			in, closeIn, err := openInput(input)
			if err != nil {
				return err
			}
			defer closeIn()

			reqs, badLines, err := processor.ReadRequests(in)
			if err != nil {
				return err
			}
			for _, bad := range badLines {
				comps.Logger.Warn("Malformed request line, emitting fallback",
					logger.Int("line", bad.Line),
					logger.Error(bad.Err))
			}

			bp := comps.Processor
			if concurrency > 0 {
				bp = processor.NewBatchProcessor(comps.Analyzer, concurrency, comps.Telemetry, comps.Logger)
			}
			resps, processErr := bp.Process(cmd.Context(), reqs)

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, createErr := os.Create(output)
				if createErr != nil {
					return fmt.Errorf("create output: %w", createErr)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			if err = processor.WriteResponses(out, resps); err != nil {
				return err
			}
			if processErr != nil {
				return fmt.Errorf("batch interrupted: %w", processErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSONL request file (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "JSONL response file (- for stdout)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "worker count (default from config)")
	return cmd
}
