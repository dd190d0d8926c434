package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ppiankov/garsync/internal/config"
	"github.com/ppiankov/garsync/internal/falcon"
	"github.com/ppiankov/garsync/internal/gcp"
	"github.com/ppiankov/garsync/internal/reconcile"
	"github.com/ppiankov/garsync/internal/report"
)

func runRoot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if overrides, err := config.Load("."); err != nil {
		slog.Warn("Failed to load config file", "error", err)
	} else {
		overrides.Apply(&cfg)
	}

	gcpClient, err := gcp.NewClient(ctx)
	if err != nil {
		return enhanceError("initialize GCP client", err)
	}
	defer func() { _ = gcpClient.Close() }()

	falconClient := falcon.NewClient(ctx, cfg.FalconClientID, cfg.FalconClientSecret, cfg.FalconAPIBase)

	orch := reconcile.New(
		cfg.HostProject,
		gcp.NewDiscoverer(gcpClient, cfg.Locations),
		gcp.NewCredentialManager(gcpClient, cfg.IdentityName),
		gcp.NewGrantor(gcpClient),
		falconClient,
		confirmFunc(rootFlags.yes),
	)

	var sum *reconcile.Summary
	if rootFlags.deprovision {
		slog.Info("Starting deprovisioning", "project", cfg.HostProject)
		sum, err = orch.Deprovision(ctx)
	} else {
		slog.Info("Starting provisioning", "project", cfg.HostProject)
		sum, err = orch.Provision(ctx)
	}
	if err != nil {
		return err
	}

	reporter := &report.TextReporter{Writer: os.Stdout}
	return reporter.Generate(sum)
}

// confirmFunc builds the orchestrator's confirmation gate: auto-approve
// when --yes was given, otherwise an interactive prompt.
func confirmFunc(autoYes bool) reconcile.ConfirmFunc {
	if autoYes {
		return func(context.Context, string) (bool, error) {
			return true, nil
		}
	}
	return func(_ context.Context, prompt string) (bool, error) {
		var ok bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(prompt).
					Description("Removed records are hard deleted after 48 hours.").
					Affirmative("Yes, remove").
					Negative("Cancel").
					Value(&ok),
			),
		)
		if err := form.Run(); err != nil {
			return false, err
		}
		return ok, nil
	}
}
