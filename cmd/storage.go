package cmd

import (
	"fmt"
	"time"

	"audiochan/core/maintenance"
	"audiochan/db"
	"audiochan/repository"
	"audiochan/storage"

	"github.com/spf13/cobra"
)

var (
	storagePrefix  string
	storageStats   bool
	storageOrphans bool
	storageDelete  bool
	storageMinAge  time.Duration
	storageBatch   int
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect the blob store",
	Long:  `List objects, show bucket statistics, or find audio blobs that no audio row points at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		blobs, err := storage.Open(ctx, cfg, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if storageOrphans {
			gdb, err := db.Connect(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			sweeper := maintenance.NewSweeper(blobs, repository.NewGormStore(gdb).Audios(), storageMinAge)
			sweeper.BatchSize = storageBatch
			report, err := sweeper.Sweep(ctx, storageDelete)
			if err != nil {
				return err
			}
			for _, o := range report.Orphans {
				fmt.Fprintf(out, "%s\t%s\t%s\n", o.Key, storage.FormatSize(o.Size), o.LastModified.Format(time.RFC3339))
			}
			fmt.Fprintf(out, "scanned %d, orphans %d, deleted %d, failed %d\n",
				report.Scanned, len(report.Orphans), report.Deleted, report.Failed)
			return nil
		}

		objects, stats, err := storage.CollectStats(ctx, blobs, storagePrefix)
		if err != nil {
			return err
		}
		if storageStats {
			fmt.Fprintf(out, "objects:       %d\n", stats.TotalObjects)
			fmt.Fprintf(out, "total size:    %s\n", storage.FormatSize(stats.TotalSize))
			if !stats.LastModified.IsZero() {
				fmt.Fprintf(out, "last modified: %s\n", stats.LastModified.Format(time.RFC3339))
			}
			for _, ext := range stats.Extensions() {
				fmt.Fprintf(out, "  %-8s %d\n", ext, stats.ByExtension[ext])
			}
			return nil
		}
		for _, obj := range objects {
			fmt.Fprintf(out, "%s\t%s\n", obj.Key, storage.FormatSize(obj.Size))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "only objects under this prefix")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "print statistics instead of a listing")
	storageCmd.Flags().BoolVar(&storageOrphans, "orphans", false, "report audio blobs without an audio row")
	storageCmd.Flags().BoolVarP(&storageDelete, "delete", "d", false, "delete the orphans found by --orphans")
	storageCmd.Flags().DurationVar(&storageMinAge, "min-age", maintenance.DefaultMinAge, "ignore orphans younger than this")
	storageCmd.Flags().IntVar(&storageBatch, "batch-size", maintenance.DefaultBatchSize, "blobs looked up and deleted per batch")

	storageCmd.Example = `  # list every object
  audiochan storage

  # statistics for the audio container
  audiochan storage -s -p "audios/"

  # remove audio blobs that were uploaded but never registered
  audiochan storage --orphans --delete`
}
