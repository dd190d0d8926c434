package commands

import (
	"github.com/ppiankov/garsync/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	version string
	commit  string
	date    string
)

var rootFlags struct {
	deprovision bool
	yes         bool
}

var rootCmd = &cobra.Command{
	Use:   "garsync",
	Short: "garsync — register GCP Artifact Registry with CrowdStrike",
	Long: `garsync discovers Artifact Registry repositories across all accessible GCP
projects, provisions a least-privilege scanner service account, and registers
each repository with CrowdStrike's container security service.

With --deprovision it removes the registrations and the service account.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(verbose)
	},
	RunE:          runRoot,
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
	rootCmd.Flags().BoolVar(&rootFlags.deprovision, "deprovision", false, "Remove registrations and the scanner service account")
	rootCmd.Flags().BoolVarP(&rootFlags.yes, "yes", "y", false, "Skip the interactive confirmation prompt")
	rootCmd.AddCommand(versionCmd)
}
