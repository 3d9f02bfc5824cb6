package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/siteiq/siteiq/internal/model"
)

var (
	batchFile   string
	batchLimit  int
	batchOutput string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze locations from a file, one query per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		queries, err := readQueries(batchFile)
		if err != nil {
			return err
		}

		return processBatch(ctx, queries, batchLimit, cfg.Batch.MaxConcurrent, batchOutput, func(ctx context.Context, query model.LocationQuery) (*model.Report, error) {
			return env.Pipeline.Run(ctx, query)
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file with one location query per line (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of queries to process (0 = all)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write reports as JSON lines to this file")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// readQueries loads location queries from a file, skipping blank lines
// and #-comments.
func readQueries(path string) ([]model.LocationQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	var queries []model.LocationQuery
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, model.LocationQuery{Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", path)
	}
	return queries, nil
}

// analyzeFunc is the callback signature for analyzing a single query.
type analyzeFunc func(ctx context.Context, query model.LocationQuery) (*model.Report, error)

// processBatch analyzes queries concurrently. Individual failures are
// logged and counted, never abort the batch.
func processBatch(ctx context.Context, queries []model.LocationQuery, limit, concurrency int, outputPath string, analyze analyzeFunc) error {
	if len(queries) == 0 {
		zap.L().Info("no queries to process")
		return nil
	}
	if limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	var out *json.Encoder
	var outMu sync.Mutex
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "batch: create %s", outputPath)
		}
		defer f.Close()
		out = json.NewEncoder(f)
	}

	zap.L().Info("processing batch",
		zap.Int("queries", len(queries)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, query := range queries {
		g.Go(func() error {
			log := zap.L().With(zap.String("query", query.Text))

			report, err := analyze(gctx, query)
			if err != nil {
				failed.Add(1)
				log.Error("analysis failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("analysis complete",
				zap.String("recommendation", string(report.Recommendation)),
				zap.Bool("degraded", report.Degraded()),
			)

			if out != nil {
				outMu.Lock()
				defer outMu.Unlock()
				if encErr := out.Encode(report); encErr != nil {
					log.Warn("failed to write report", zap.Error(encErr))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
