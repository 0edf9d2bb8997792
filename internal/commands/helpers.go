package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/archivecost/internal/config"
	"github.com/ppiankov/archivecost/internal/history"
	"github.com/ppiankov/archivecost/internal/pricing"
	"github.com/ppiankov/archivecost/internal/report"
)

// enhanceError wraps an error with context and suggestions for common cloud issues.
func enhanceError(action string, err error) error {
	msg := err.Error()

	var hint string
	switch {
	case strings.Contains(msg, "NoCredentialProviders"):
		hint = "Configure AWS credentials: set AWS_PROFILE, AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY, or run 'aws configure'"
	case strings.Contains(msg, "ExpiredToken"):
		hint = "AWS session token expired. Refresh credentials or run 'aws sso login'"
	case strings.Contains(msg, "AccessDenied") || strings.Contains(msg, "UnauthorizedAccess"):
		hint = "Insufficient permissions. Apply the IAM policy from 'archivecost init' to your role/user"
	case strings.Contains(msg, "RequestExpired"):
		hint = "Request expired. Check system clock synchronization"
	case strings.Contains(msg, "Throttling"):
		hint = "API rate limit hit. Retry later or run with --offline"
	case strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid"):
		hint = "GCP API key rejected. Check pricing.gcp_api_key and that the Cloud Billing API is enabled"
	case strings.Contains(msg, "connection refused") && strings.Contains(msg, "5432"):
		hint = "PostgreSQL is not reachable. Check history.dsn or use the csv history backend"
	case strings.Contains(msg, "permission denied"):
		hint = "Cannot write history files. Check permissions on the history directory or use --history-dir"
	}

	if hint != "" {
		return fmt.Errorf("%s: %w\n  hint: %s", action, err, hint)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// loadConfig reads .archivecost.yaml from the working directory. An invalid
// file is an error rather than a warning so bad rates are never used.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// selectReporter returns the reporter for format writing to outputFile, or
// stdout when outputFile is empty. The returned close function must be called.
func selectReporter(format, outputFile string) (report.Reporter, func() error, error) {
	var w io.Writer = os.Stdout
	closeFn := func() error { return nil }
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, nil, fmt.Errorf("create output file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	switch format {
	case "json":
		return &report.JSONReporter{Writer: w}, closeFn, nil
	case "text":
		return &report.TextReporter{Writer: w}, closeFn, nil
	case "csv":
		return &report.CSVReporter{Writer: w}, closeFn, nil
	default:
		_ = closeFn()
		return nil, nil, fmt.Errorf("unsupported format: %s (use text, json, or csv)", format)
	}
}

// generate runs the reporter and closes its output.
func generate(format, outputFile string, data report.Data) error {
	reporter, closeFn, err := selectReporter(format, outputFile)
	if err != nil {
		return err
	}
	if err := reporter.Generate(data); err != nil {
		_ = closeFn()
		return fmt.Errorf("write report: %w", err)
	}
	return closeFn()
}

// historyFlags selects the history backend on commands that read or write it.
type historyFlags struct {
	dir string
}

// openHistory opens the configured backend. The directory flag wins over
// history.dir when changed from its default.
func openHistory(ctx context.Context, cfg config.Config, f historyFlags) (history.Store, error) {
	dir := f.dir
	if dir == defaultHistoryDir && cfg.History.Dir != "" {
		dir = cfg.History.Dir
	}
	store, err := history.Open(ctx, history.Options{
		Backend: cfg.History.Backend,
		Dir:     dir,
		DSN:     cfg.History.DSN,
	})
	if err != nil {
		return nil, enhanceError("open history", err)
	}
	return store, nil
}

const defaultHistoryDir = "history"

// newResolver builds the live price resolver from config.
func newResolver(ctx context.Context, cfg config.Config, profile string, offline bool) (*pricing.Resolver, error) {
	timeouts, err := cfg.Pricing.ProviderTimeouts()
	if err != nil {
		return nil, err
	}
	if profile == "" {
		profile = cfg.Profile
	}
	r, err := pricing.NewDefaultResolver(ctx, pricing.Options{
		Profile:   profile,
		GCPAPIKey: cfg.Pricing.GCPAPIKey,
		CacheTTL:  cfg.Pricing.CacheTTLOr(pricing.DefaultCacheTTL),
		Timeouts:  timeouts,
		Offline:   offline,
	})
	if err != nil {
		return nil, enhanceError("initialize pricing", err)
	}
	return r, nil
}
