package gcp

import (
	"context"
	"fmt"
	"log/slog"
)

// DiscoveryAPI defines the subset of GCP listing operations used by the
// Discoverer.
type DiscoveryAPI interface {
	SearchProjects(ctx context.Context) ([]string, error)
	ListRepositories(ctx context.Context, projectID, location string) ([]RegistryDescriptor, error)
}

// Discoverer enumerates Artifact Registry repositories across all
// accessible projects and a fixed list of locations.
type Discoverer struct {
	api       DiscoveryAPI
	locations []string
}

// NewDiscoverer creates a Discoverer over the given locations.
func NewDiscoverer(api DiscoveryAPI, locations []string) *Discoverer {
	return &Discoverer{api: api, locations: locations}
}

// Discover returns every repository visible to the caller. An empty result
// is valid and means there is nothing to register. Only a failure of the
// project search itself is returned as an error; per-location failures are
// logged and skipped, and a disabled API or missing access skips the
// remaining locations of that project.
func (d *Discoverer) Discover(ctx context.Context) ([]RegistryDescriptor, error) {
	projects, err := d.api.SearchProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("search projects: %w", err)
	}

	var found []RegistryDescriptor
	for _, projectID := range projects {
		slog.Debug("Checking project", "project", projectID)

		for _, location := range d.locations {
			repos, err := d.api.ListRepositories(ctx, projectID, location)
			if err != nil {
				if IsServiceDisabled(err) {
					slog.Info("Artifact Registry API not enabled, skipping project", "project", projectID)
					break
				}
				if IsPermissionDenied(err) {
					slog.Info("No Artifact Registry access, skipping project", "project", projectID)
					break
				}
				slog.Warn("Listing repositories failed", "project", projectID, "location", location, "error", err)
				continue
			}

			for _, repo := range repos {
				slog.Info("Found registry", "name", repo.Name, "location", location)
			}
			found = append(found, repos...)
		}
	}

	return found, nil
}
