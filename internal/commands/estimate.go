package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/archivecost/internal/config"
	"github.com/ppiankov/archivecost/internal/cost"
	"github.com/ppiankov/archivecost/internal/estimator"
	"github.com/ppiankov/archivecost/internal/history"
	"github.com/ppiankov/archivecost/internal/inventory"
	"github.com/ppiankov/archivecost/internal/report"
)

var estimateFlags struct {
	costFlags
	history   historyFlags
	noCompare bool
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate digitization and archive cost for one provider",
	Long: `Price scanning, OCR, manpower, storage and license costs for the selected
provider, record the estimate in the history log, then compare all providers
and recommend the cheapest.

Pages and size come from --pages (size assumed at 350 KB per page), --size-gb,
or an --inventory file listing documents.`,
	RunE: runEstimate,
}

func init() {
	addCostFlags(estimateCmd, &estimateFlags.costFlags)
	estimateCmd.Flags().StringVar(&estimateFlags.history.dir, "history-dir", defaultHistoryDir, "Directory for CSV history logs")
	estimateCmd.Flags().BoolVar(&estimateFlags.noCompare, "no-compare", false, "Skip the multi-provider comparison")
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	f := &estimateFlags.costFlags

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCostConfigDefaults(cmd, f, cfg)

	ctx := commandContext(cmd)
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, inv, err := buildRequest(cmd, f, cfg)
	if err != nil {
		return err
	}
	req.SkipCompare = estimateFlags.noCompare

	store, err := openHistory(ctx, cfg, estimateFlags.history)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	res, err := runEstimator(ctx, cfg, f, store, req)
	if err != nil {
		return err
	}

	data := buildEstimateData(cfg, res, inv)
	if err := generate(f.format, f.outputFile, data); err != nil {
		return err
	}

	if res.RecordErr != nil {
		return enhanceError("estimate computed but not recorded", res.RecordErr)
	}
	return nil
}

// runEstimator resolves prices and runs one estimate. store may be nil.
func runEstimator(ctx context.Context, cfg config.Config, f *costFlags, store history.Store, req estimator.Request) (*estimator.Result, error) {
	licenses, err := cfg.Pricing.LicenseCosts()
	if err != nil {
		return nil, err
	}
	regions, err := cfg.ProviderRegions()
	if err != nil {
		return nil, err
	}

	resolver, err := newResolver(ctx, cfg, f.profile, f.offline)
	if err != nil {
		return nil, err
	}
	defer resolver.Close()

	slog.Info("Estimating", "provider", req.Provider, "region", req.Region,
		"pages", req.Inputs.Pages, "size_gb", req.Inputs.SizeGB)

	est := estimator.New(resolver, store, licenses, estimator.WithRegions(regions, cfg.Region))
	return est.Run(ctx, req)
}

func buildEstimateData(cfg config.Config, res *estimator.Result, inv *inventory.Summary) report.Data {
	data := report.Data{
		Tool:      "archivecost",
		Version:   version,
		Timestamp: time.Now().UTC(),
		Config: report.ReportConfig{
			Provider:        string(res.Selected.Provider),
			Region:          res.Selected.Region,
			RetentionMonths: res.Inputs.RetentionMonths,
			Effort:          string(res.Inputs.Effort),
			HistoryBackend:  historyBackend(cfg),
		},
		Estimate: res,
	}

	if inv != nil {
		for _, name := range inv.Skipped {
			data.Errors = append(data.Errors, fmt.Sprintf("document %s listed more than once, skipped", name))
		}
	}
	for _, p := range res.FallbackUsed() {
		data.Errors = append(data.Errors, fmt.Sprintf("live price unavailable for %s, used fallback rate $%.3f/GB-month",
			p, fallbackRate(res, p)))
	}
	if res.RecordErr != nil {
		data.Errors = append(data.Errors, fmt.Sprintf("estimate not recorded: %v", res.RecordErr))
	}
	return data
}

func fallbackRate(res *estimator.Result, p cost.Provider) float64 {
	if res.Selected.Provider == p {
		return res.Selected.Price.Value
	}
	for _, b := range res.Comparison {
		if b.Provider == p {
			return b.Price.Value
		}
	}
	return 0
}

func historyBackend(cfg config.Config) string {
	if cfg.History.Backend == "" {
		return history.BackendCSV
	}
	return cfg.History.Backend
}
