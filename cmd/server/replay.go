package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/models"
	"github.com/mx-space/folio/internal/modules/stats/tracker"
	"github.com/mx-space/folio/internal/pkg/kv"
)

var (
	replayEndpoint string
	replayStore    string
	replayMaxBatch int
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yml>",
	Short: "Replay a recorded reading session through the analytics tracker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		script, err := tracker.ParseScript(f)
		if err != nil {
			return err
		}

		var sender tracker.Sender
		if replayEndpoint != "" {
			sender = tracker.NewHTTPSender(tracker.SenderConfig{Endpoint: replayEndpoint, Logger: logger})
		} else {
			sender = tracker.SenderFunc(func(_ context.Context, events []models.AnalyticsEvent) error {
				logger.Info("batch", zap.Int("events", len(events)))
				return nil
			})
		}

		maxBatch := replayMaxBatch
		if maxBatch < 0 {
			maxBatch = appConfig.Analytics.MaxBatch
		}

		var store kv.Store = kv.NewMemory()
		if replayStore != "" {
			store = kv.NewFile(replayStore)
		}

		res, err := tracker.Replay(script, tracker.Options{Sender: sender, Store: store, Logger: logger, MaxBatch: maxBatch}, time.Now())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Events  []models.AnalyticsEvent `json:"events"`
			Summary tracker.Summary         `json:"summary"`
		}{res.Events, res.Summary})
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayEndpoint, "endpoint", "", "collector URL to post batches to (default: log only)")
	replayCmd.Flags().IntVar(&replayMaxBatch, "max-batch", -1, "events per batch, 0 sends the whole buffer (default: analytics.max_batch)")
	replayCmd.Flags().StringVar(&replayStore, "store", "", fmt.Sprintf("JSON file to mirror %q into (default: memory)", tracker.StorageKey))
}
