package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/archivecost/internal/analyzer"
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/report"
)

var historyListFlags struct {
	history    historyFlags
	providers  []string
	minPages   int
	maxPages   int
	minCost    float64
	maxCost    float64
	format     string
	outputFile string
}

var historyCostsFlags struct {
	history    historyFlags
	providers  []string
	format     string
	outputFile string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and export recorded estimates",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded estimates with optional filters",
	Long: `Read the estimate history log, filter it by provider, page range and total
cost range, and print the matching entries with a summary. Use --format csv
with --output to export the filtered history.`,
	RunE: runHistoryList,
}

var historyCostsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Show the recorded cost component breakdowns",
	RunE:  runHistoryCosts,
}

func init() {
	f := historyListCmd.Flags()
	f.StringVar(&historyListFlags.history.dir, "history-dir", defaultHistoryDir, "Directory for CSV history logs")
	f.StringSliceVar(&historyListFlags.providers, "provider", nil, "Only these providers (s3, gcs, azure)")
	f.IntVar(&historyListFlags.minPages, "min-pages", 0, "Minimum page count")
	f.IntVar(&historyListFlags.maxPages, "max-pages", 0, "Maximum page count (0: no limit)")
	f.Float64Var(&historyListFlags.minCost, "min-cost", 0, "Minimum total cost ($)")
	f.Float64Var(&historyListFlags.maxCost, "max-cost", 0, "Maximum total cost ($, 0: no limit)")
	f.StringVar(&historyListFlags.format, "format", defaultFormat, "Output format: text, json, csv")
	f.StringVarP(&historyListFlags.outputFile, "output", "o", "", "Output file path (default: stdout)")

	c := historyCostsCmd.Flags()
	c.StringVar(&historyCostsFlags.history.dir, "history-dir", defaultHistoryDir, "Directory for CSV history logs")
	c.StringSliceVar(&historyCostsFlags.providers, "provider", nil, "Only these providers (s3, gcs, azure)")
	c.StringVar(&historyCostsFlags.format, "format", defaultFormat, "Output format: text, json, csv")
	c.StringVarP(&historyCostsFlags.outputFile, "output", "o", "", "Output file path (default: stdout)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyCostsCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if historyListFlags.format == defaultFormat && cfg.Format != "" {
		historyListFlags.format = cfg.Format
	}

	ctx := commandContext(cmd)
	providers, err := parseFilterProviders(historyListFlags.providers)
	if err != nil {
		return err
	}

	store, err := openHistory(ctx, cfg, historyListFlags.history)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.LoadAll(ctx)
	if err != nil {
		return enhanceError("read history", err)
	}

	analysis := analyzer.Analyze(entries, analyzer.AnalyzerConfig{
		Providers: providers,
		MinPages:  historyListFlags.minPages,
		MaxPages:  historyListFlags.maxPages,
		MinCost:   historyListFlags.minCost,
		MaxCost:   historyListFlags.maxCost,
	})

	data := report.Data{
		Tool:      "archivecost",
		Version:   version,
		Timestamp: time.Now().UTC(),
		Config:    report.ReportConfig{HistoryBackend: historyBackend(cfg)},
		History:   analysis,
	}
	return generate(historyListFlags.format, historyListFlags.outputFile, data)
}

func runHistoryCosts(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if historyCostsFlags.format == defaultFormat && cfg.Format != "" {
		historyCostsFlags.format = cfg.Format
	}

	ctx := commandContext(cmd)
	providers, err := parseFilterProviders(historyCostsFlags.providers)
	if err != nil {
		return err
	}

	store, err := openHistory(ctx, cfg, historyCostsFlags.history)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.LoadAllComponents(ctx)
	if err != nil {
		return enhanceError("read cost components", err)
	}
	if len(providers) > 0 {
		keep := records[:0]
		for _, r := range records {
			for _, p := range providers {
				if r.Provider == p {
					keep = append(keep, r)
					break
				}
			}
		}
		records = keep
	}

	data := report.Data{
		Tool:       "archivecost",
		Version:    version,
		Timestamp:  time.Now().UTC(),
		Config:     report.ReportConfig{HistoryBackend: historyBackend(cfg)},
		Components: records,
	}
	if len(records) == 0 {
		data.Errors = []string{"no cost components recorded"}
	}
	return generate(historyCostsFlags.format, historyCostsFlags.outputFile, data)
}

// parseFilterProviders is parseProviders where empty stays empty.
func parseFilterProviders(names []string) ([]cost.Provider, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return parseProviders(names)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
