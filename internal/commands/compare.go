package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var compareFlags struct {
	costFlags
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare all providers without recording history",
	Long: `Price the same archive on Amazon S3, Google Cloud Storage and Microsoft Azure
and recommend the cheapest. Nothing is written to the history log.`,
	RunE: runCompare,
}

func init() {
	addCostFlags(compareCmd, &compareFlags.costFlags)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	f := &compareFlags.costFlags

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

	res, err := runEstimator(ctx, cfg, f, nil, req)
	if err != nil {
		return err
	}

	data := buildEstimateData(cfg, res, inv)
	data.Config.HistoryBackend = ""
	return generate(f.format, f.outputFile, data)
}
