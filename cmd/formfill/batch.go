package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/formfill/internal/async"
	"github.com/joseph-ayodele/formfill/internal/export"
	"github.com/joseph-ayodele/formfill/internal/ingest"
)

var (
	batchDir        string
	batchOut        string
	batchWorkers    int
	batchSkipHidden bool
)

var batchCmd = &cobra.Command{
	Use:   "batch --dir <dir> [--out <file.xlsx>]",
	Short: "Extract every card image under a directory into one XLSX workbook",
	Long: `Batch walks a directory, runs extraction over every image on a worker
pool and writes one row per document to an XLSX workbook. Images with
identical content are processed once.

If --out is omitted the workbook is written next to the directory as
documents.xlsx.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := stack.Logger
		cfg := stack.Config.Worker

		if batchOut == "" {
			batchOut = filepath.Join(filepath.Dir(filepath.Clean(batchDir)), "documents.xlsx")
		}
		workers := cfg.Workers
		if batchWorkers > 0 {
			workers = batchWorkers
		}

		var (
			mu       sync.Mutex
			rows     []export.Row
			failures int
		)
		handler := func(ctx context.Context, job async.Job) error {
			res, err := stack.Processor.ProcessFile(ctx, job.Path)
			mu.Lock()
			rows = append(rows, export.RowFromResult(res, err))
			if err != nil {
				failures++
			}
			mu.Unlock()
			return err
		}
		q := async.NewProcessorQueue(handler, logger,
			async.WithWorkers(workers),
			async.WithQueueSize(cfg.QueueSize),
			async.WithProcessTimeout(cfg.ProcessTimeout),
		)

		start := time.Now()
		ingestor := ingest.NewFSIngestor(q, logger)
		_, stats, err := ingestor.IngestDirectory(ctx, batchDir, batchSkipHidden)
		q.Shutdown(context.WithoutCancel(ctx))
		if err != nil {
			return err
		}
		if stats.Matched == 0 {
			return errors.New("no images found under " + batchDir)
		}

		sort.Slice(rows, func(i, j int) bool { return rows[i].Source < rows[j].Source })
		xlsx, err := stack.Exporter.WriteXLSX(rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(batchOut, xlsx, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", batchOut, err)
		}

		logger.Info("batch processing complete",
			"matched", stats.Matched,
			"deduplicated", stats.Deduplicated,
			"processed", len(rows),
			"failures", failures,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return output(map[string]any{
			"output":       batchOut,
			"documents":    len(rows),
			"failures":     failures,
			"deduplicated": stats.Deduplicated,
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchDir, "dir", "", "directory of card images (required)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "output XLSX path")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "worker count (default from config)")
	batchCmd.Flags().BoolVar(&batchSkipHidden, "skip-hidden", true, "skip hidden files and directories")
	_ = batchCmd.MarkFlagRequired("dir")
}
