package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-crime-forecast/internal/forecast"
	"github.com/mr1hm/go-crime-forecast/internal/ingestion"
)

var (
	beat   int
	no311  bool
	top    int
	pretty bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the hourly forecast for a beat",
		Long:  "Print the hourly forecast for a beat as JSON, the same document GET /beat/{beat_id} serves.",
		Run:   runQuery,
	}
	cmd.Flags().IntVarP(&beat, "beat", "b", 0, "Police beat to forecast")
	cmd.Flags().BoolVar(&no311, "no-311", false, "Skip 311 service request enrichment")
	cmd.Flags().IntVar(&top, "top", 0, "Keep only the N most likely blocks per hour (0 keeps all)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	_ = cmd.MarkFlagRequired("beat")

	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	opts := []forecast.Option{forecast.WithWindow(cfg.Forecast.Window)}
	if cfg.Open311.Enabled && !no311 {
		feed := ingestion.NewFeed(cfg.Open311, metrics)
		opts = append(opts, forecast.WithRequests(
			ingestion.NewSnapshotSource(feed, cfg.Open311.SnapshotPath, cfg.Open311.SnapshotMaxAge, metrics),
		))
	}
	f := forecast.New(s, metrics, opts...)

	result, err := f.Forecast(cmd.Context(), beat)
	if err != nil {
		exitErr("forecast", err)
	}
	if top > 0 {
		for hour, results := range result {
			if len(results) > top {
				result[hour] = results[:top]
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		exitErr("encode", err)
	}
}
