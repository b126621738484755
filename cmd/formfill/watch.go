package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/formfill/internal/async"
	"github.com/joseph-ayodele/formfill/internal/ingest"
)

const sidecarSuffix = ".fields.json"

var (
	watchDir     string
	watchInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch --dir <dir>",
	Short: "Extract fields from images as they appear in a directory",
	Long: `Watch monitors a directory tree and, for every new or rewritten image,
writes the extraction result next to it as <image>.fields.json. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := stack.Logger
		cfg := stack.Config.Worker

		q := async.NewProcessorQueue(writeSidecar, logger,
			async.WithWorkers(cfg.Workers),
			async.WithQueueSize(cfg.QueueSize),
			async.WithProcessTimeout(cfg.ProcessTimeout),
		)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ProcessTimeout)
			defer cancel()
			q.Shutdown(shutdownCtx)
		}()

		if stack.Config.Templates.Watch && stack.Config.Templates.Dir != "" {
			go func() {
				if err := stack.Templates.Watch(ctx); err != nil {
					logger.Warn("template watch stopped", "error", err)
				}
			}()
		}

		events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{watchDir},
			InitialScan: watchInitial,
			Debounce:    cfg.Debounce,
			SkipHidden:  true,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		ingestor := ingest.NewFSIngestor(q, logger)
		logger.Info("watching for card images", "dir", watchDir)

		for {
			select {
			case <-ctx.Done():
				return nil
			case path, ok := <-events:
				if !ok {
					return nil
				}
				if _, err := ingestor.IngestPath(ctx, path); err != nil {
					logger.Warn("ingest failed", "path", path, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				logger.Warn("watcher error", "error", err)
			}
		}
	},
}

func writeSidecar(ctx context.Context, job async.Job) error {
	res, err := stack.Processor.ProcessFile(ctx, job.Path)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(viewOf(res, false), "", "  ")
	if err != nil {
		return err
	}
	path := job.Path + sidecarSuffix
	tmp := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "directory to watch (required)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial-scan", true, "process images already present")
	_ = watchCmd.MarkFlagRequired("dir")
}
