package commands

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/archivecost/internal/logging"
)

var (
	verbose bool
	version string
	commit  string
	date    string
)

var rootCmd = &cobra.Command{
	Use:   "archivecost",
	Short: "archivecost - document digitization and archive cost estimator",
	Long: `archivecost estimates what it costs to scan, OCR and archive paper documents
in cloud storage. It prices Amazon S3, Google Cloud Storage and Microsoft Azure
with live storage rates (falling back to a static table), recommends the
cheapest provider and keeps an append-only history of every estimate.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(verbose)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
