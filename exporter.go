package main

import (
	"github.com/spf13/cobra"
)

var (
	concurrency   int
	recsPerInsert int
	vmInsertURL   string
	metricPrefix  string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Export the temporal tables to Victoria Metrics",
	Long: `Export the spatial-mean series of every scenario to Victoria Metrics.

The insert URL path selects the wire format: /write and /influx/write send
InfluxDB line protocol, /api/v1/import/csv sends CSV rows.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		if flags.Changed("concurrency") {
			cfg.Concurrency = concurrency
		}
		if flags.Changed("recsPerInsert") {
			cfg.RecsPerInsert = recsPerInsert
		}
		if flags.Changed("vmInsertUrl") {
			cfg.InsertURL = vmInsertURL
		}
		if flags.Changed("metricPrefix") {
			cfg.MetricPrefix = metricPrefix
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return newRunner(cmd).Push(cmd.Context())
	},
}

func init() {
	pushCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent requests to Victoria Metrics (default from config)")
	pushCmd.Flags().IntVar(&recsPerInsert, "recsPerInsert", 0, "number of records sent to VM in one batch (default from config)")
	pushCmd.Flags().StringVar(&vmInsertURL, "vmInsertUrl", "", "Victoria Metrics insert API URL (default from config)")
	pushCmd.Flags().StringVar(&metricPrefix, "metricPrefix", "", "measurement name prefixed to every metric (default from config)")
}
