package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"google.golang.org/api/cloudresourcemanager/v1"
)

// ScannerRoles are granted to the scanner identity in every project that
// holds discovered repositories. Read-only registry and object storage
// access only.
var ScannerRoles = []string{
	"roles/artifactregistry.reader",
	"roles/storage.objectViewer",
}

// PolicyAPI defines the project IAM policy operations used by the Grantor.
type PolicyAPI interface {
	GetProjectPolicy(ctx context.Context, projectID string) (*cloudresourcemanager.Policy, error)
	SetProjectPolicy(ctx context.Context, projectID string, policy *cloudresourcemanager.Policy) error
}

// GrantResult reports the outcome of a single role grant.
type GrantResult struct {
	Role string
	Err  error
}

// Grantor grants the scanner roles on project IAM policies.
type Grantor struct {
	api PolicyAPI
}

// NewGrantor creates a Grantor.
func NewGrantor(api PolicyAPI) *Grantor {
	return &Grantor{api: api}
}

// GrantRoles grants each scanner role to the identity independently; a
// failed role does not block the others. Granting an already-held role is
// a no-op.
func (g *Grantor) GrantRoles(ctx context.Context, projectID, email string) []GrantResult {
	slog.Info("Granting roles", "project", projectID, "email", email)

	member := "serviceAccount:" + email
	results := make([]GrantResult, 0, len(ScannerRoles))
	for _, role := range ScannerRoles {
		err := g.grantRole(ctx, projectID, role, member)
		if err != nil {
			slog.Warn("Failed to grant role", "project", projectID, "role", role, "error", err)
		} else {
			slog.Info("Granted role", "project", projectID, "role", role)
		}
		results = append(results, GrantResult{Role: role, Err: err})
	}
	return results
}

func (g *Grantor) grantRole(ctx context.Context, projectID, role, member string) error {
	policy, err := g.api.GetProjectPolicy(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get IAM policy for %s: %w", projectID, err)
	}
	if !addBinding(policy, role, member) {
		return nil // already granted
	}
	if err := g.api.SetProjectPolicy(ctx, projectID, policy); err != nil {
		return fmt.Errorf("set IAM policy for %s: %w", projectID, err)
	}
	return nil
}

// addBinding adds member to the binding for role, reporting whether the
// policy changed.
func addBinding(policy *cloudresourcemanager.Policy, role, member string) bool {
	for _, binding := range policy.Bindings {
		if binding.Role != role {
			continue
		}
		if slices.Contains(binding.Members, member) {
			return false
		}
		binding.Members = append(binding.Members, member)
		return true
	}
	policy.Bindings = append(policy.Bindings, &cloudresourcemanager.Binding{
		Role:    role,
		Members: []string{member},
	})
	return true
}
