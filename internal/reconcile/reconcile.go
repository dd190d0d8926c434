package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/garsync/internal/falcon"
	"github.com/ppiankov/garsync/internal/gcp"
)

// Run modes, recorded on the Summary for reporting.
const (
	ModeProvision   = "provision"
	ModeDeprovision = "deprovision"
)

// Discoverer enumerates Artifact Registry repositories.
type Discoverer interface {
	Discover(ctx context.Context) ([]gcp.RegistryDescriptor, error)
}

// CredentialManager manages the scanner service account and its keys.
type CredentialManager interface {
	EnsureIdentityAndKey(ctx context.Context, projectID string) (gcp.ServiceAccountKey, string, error)
	CleanupIdentity(ctx context.Context, projectID string) error
}

// Grantor grants the scanner roles in a project.
type Grantor interface {
	GrantRoles(ctx context.Context, projectID, email string) []gcp.GrantResult
}

// ConfirmFunc gates destructive operations. It must return true only on an
// explicit affirmative from the operator.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// ItemResult records the outcome of one per-registry operation.
type ItemResult struct {
	Registry string
	Alias    string
	Err      error
}

// Summary aggregates a run's outcomes for reporting. Failed items never
// abort a run; they are counted here.
type Summary struct {
	Mode        string
	Total       int
	Succeeded   int
	Failed      int
	Failures    []ItemResult
	NothingToDo bool
	Aborted     bool

	// CredentialErr holds a deprovision-side service account cleanup
	// failure. Cleanup failures are reported, not fatal.
	CredentialErr error
}

// Orchestrator composes discovery, credentials, role grants, and the
// external registration service into the provision and deprovision
// workflows. Collaborators are injected; the orchestrator never performs
// I/O of its own.
type Orchestrator struct {
	hostProject string
	discoverer  Discoverer
	creds       CredentialManager
	grantor     Grantor
	falcon      falcon.API
	confirm     ConfirmFunc
}

// New creates an Orchestrator. hostProject is the project hosting the
// scanner service account.
func New(hostProject string, d Discoverer, c CredentialManager, g Grantor, f falcon.API, confirm ConfirmFunc) *Orchestrator {
	return &Orchestrator{
		hostProject: hostProject,
		discoverer:  d,
		creds:       c,
		grantor:     g,
		falcon:      f,
		confirm:     confirm,
	}
}

// Provision discovers repositories, ensures the scanner credential, grants
// roles once per discovered project, and registers every repository with
// the external service. When discovery finds nothing, no credential is
// minted and no roles are granted.
func (o *Orchestrator) Provision(ctx context.Context) (*Summary, error) {
	registries, err := o.discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	if len(registries) == 0 {
		slog.Info("No registries found")
		return &Summary{Mode: ModeProvision, NothingToDo: true}, nil
	}
	slog.Info("Discovered registries", "count", len(registries))

	key, email, err := o.creds.EnsureIdentityAndKey(ctx, o.hostProject)
	if err != nil {
		return nil, err
	}

	// One grant pass per distinct project, in first-appearance order.
	// Grant failures are reported by the grantor and do not block
	// registration.
	granted := make(map[string]bool)
	for _, registry := range registries {
		if granted[registry.ProjectID] {
			continue
		}
		granted[registry.ProjectID] = true
		o.grantor.GrantRoles(ctx, registry.ProjectID, email)
	}

	saKey := falcon.ServiceAccountJSON{
		Type:         key.Type,
		PrivateKeyID: key.PrivateKeyID,
		PrivateKey:   key.PrivateKey,
		ClientEmail:  key.ClientEmail,
		ClientID:     key.ClientID,
		ProjectID:    key.ProjectID,
	}

	sum := &Summary{Mode: ModeProvision, Total: len(registries)}
	for _, registry := range registries {
		payload := falcon.NewGARPayload(registry.ProjectID, registry.Location, registry.RepositoryID, saKey)
		slog.Info("Registering", "registry", registry.Name)

		if err := o.falcon.CreateRegistry(ctx, payload); err != nil {
			slog.Warn("Registration failed", "registry", registry.Name, "error", err)
			sum.Failed++
			sum.Failures = append(sum.Failures, ItemResult{
				Registry: registry.Name,
				Alias:    payload.UserDefinedAlias,
				Err:      err,
			})
			continue
		}
		slog.Info("Registered", "registry", registry.Name)
		sum.Succeeded++
	}
	return sum, nil
}

// Deprovision removes all gar-typed entries from the external service after
// operator confirmation, then removes the scanner service account.
// Credential cleanup runs unconditionally, whether entries existed, the
// operator declined, or entry listing failed.
func (o *Orchestrator) Deprovision(ctx context.Context) (*Summary, error) {
	sum := &Summary{Mode: ModeDeprovision}
	err := o.removeRegistrations(ctx, sum)

	if cerr := o.creds.CleanupIdentity(ctx, o.hostProject); cerr != nil {
		slog.Warn("Service account cleanup failed", "error", cerr)
		sum.CredentialErr = cerr
	}

	if err != nil {
		return sum, err
	}
	return sum, nil
}

func (o *Orchestrator) removeRegistrations(ctx context.Context, sum *Summary) error {
	slog.Info("Listing existing registry registrations")
	ids, err := o.falcon.ListRegistryIDs(ctx)
	if err != nil {
		return fmt.Errorf("list registries: %w", err)
	}
	if len(ids) == 0 {
		slog.Info("No registries found in the scanning service")
		sum.NothingToDo = true
		return nil
	}
	slog.Info("Found registrations", "count", len(ids))

	var entries []falcon.Entry
	for _, id := range ids {
		entry, err := o.falcon.GetRegistry(ctx, id)
		if err != nil {
			slog.Warn("Failed to fetch registry detail", "id", id, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	candidates := falcon.FilterGAR(entries)
	if len(candidates) == 0 {
		slog.Info("No Artifact Registry registrations found")
		sum.NothingToDo = true
		return nil
	}

	slog.Info("Registrations to remove", "count", len(candidates))
	for _, entry := range candidates {
		slog.Info("Candidate", "alias", entry.Alias, "url", entry.URL)
	}

	ok, err := o.confirm(ctx, fmt.Sprintf("Remove %d Artifact Registry registration(s)?", len(candidates)))
	if err != nil {
		return fmt.Errorf("confirmation: %w", err)
	}
	if !ok {
		slog.Info("Aborted registry removal")
		sum.Aborted = true
		return nil
	}

	sum.Total = len(candidates)
	for _, entry := range candidates {
		slog.Info("Removing registration", "alias", entry.Alias)
		if err := o.falcon.DeleteRegistries(ctx, []string{entry.ID}); err != nil {
			slog.Warn("Removal failed", "alias", entry.Alias, "error", err)
			sum.Failed++
			sum.Failures = append(sum.Failures, ItemResult{
				Registry: entry.URL,
				Alias:    entry.Alias,
				Err:      err,
			})
			continue
		}
		sum.Succeeded++
	}

	slog.Info("Removed records are hard deleted after 48 hours")
	return nil
}
