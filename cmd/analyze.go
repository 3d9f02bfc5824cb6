package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siteiq/siteiq/internal/model"
)

var (
	analyzeQuery  string
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Pipeline.Run(ctx, model.LocationQuery{Text: analyzeQuery})
		if err != nil {
			if model.IsResolutionError(err) {
				return eris.Wrap(err, "location not found")
			}
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis complete",
			zap.String("run_id", report.RunID),
			zap.String("recommendation", string(report.Recommendation)),
		)

		switch analyzeFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "text":
			fmt.Printf("Location: %s\n", report.Point.NormalizedAddress)
			fmt.Printf("Recommendation: %s\n\n", report.Recommendation)
			fmt.Println(report.Narrative)
			return nil
		default:
			return eris.Errorf("unknown format: %s", analyzeFormat)
		}
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeQuery, "query", "", "free-text location, e.g. \"downtown Austin, TX\" (required)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text or json")
	_ = analyzeCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(analyzeCmd)
}
