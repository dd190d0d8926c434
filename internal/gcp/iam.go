package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
)

const (
	identityDisplayName = "CrowdStrike Registry Scanner"
	identityDescription = "Service account for CrowdStrike container registry scanning"
)

// IAMAPI defines the service-account operations used by the
// CredentialManager.
type IAMAPI interface {
	GetServiceAccount(ctx context.Context, email string) error
	CreateServiceAccount(ctx context.Context, projectID, accountID, displayName, description string) error
	ListServiceAccounts(ctx context.Context, projectID string) ([]string, error)
	DeleteServiceAccount(ctx context.Context, email string) error
	CreateServiceAccountKey(ctx context.Context, email string) ([]byte, error)
}

// ServiceAccountEmail returns the deterministic email of a scanner identity
// in a project.
func ServiceAccountEmail(name, projectID string) string {
	return fmt.Sprintf("%s@%s.iam.gserviceaccount.com", name, projectID)
}

// CredentialManager ensures the scanner service account exists and mints
// fresh short-lived keys for it.
type CredentialManager struct {
	api  IAMAPI
	name string
}

// NewCredentialManager creates a manager for the named identity.
func NewCredentialManager(api IAMAPI, identityName string) *CredentialManager {
	return &CredentialManager{api: api, name: identityName}
}

// EnsureIdentityAndKey confirms the scanner service account exists in the
// project, creating it when absent, then mints a brand-new key. Keys are
// never reused across runs. Any identity-state error other than not-found
// is fatal for the run.
func (m *CredentialManager) EnsureIdentityAndKey(ctx context.Context, projectID string) (ServiceAccountKey, string, error) {
	email := ServiceAccountEmail(m.name, projectID)
	slog.Info("Managing service account", "project", projectID, "email", email)

	if err := m.api.GetServiceAccount(ctx, email); err != nil {
		if !IsNotFound(err) {
			return ServiceAccountKey{}, "", fmt.Errorf("describe service account %s: %w", email, err)
		}
		slog.Info("Creating service account", "email", email)
		if err := m.api.CreateServiceAccount(ctx, projectID, m.name, identityDisplayName, identityDescription); err != nil {
			return ServiceAccountKey{}, "", fmt.Errorf("create service account %s: %w", email, err)
		}
	} else {
		slog.Debug("Service account exists", "email", email)
	}

	raw, err := m.api.CreateServiceAccountKey(ctx, email)
	if err != nil {
		return ServiceAccountKey{}, "", fmt.Errorf("create key for %s: %w", email, err)
	}

	key, err := readKeyThroughTempFile(raw)
	if err != nil {
		return ServiceAccountKey{}, "", err
	}
	return key, email, nil
}

// CleanupIdentity removes the scanner service account from the project.
// An absent account is a success no-op.
func (m *CredentialManager) CleanupIdentity(ctx context.Context, projectID string) error {
	email := ServiceAccountEmail(m.name, projectID)
	slog.Info("Checking for service account", "email", email)

	emails, err := m.api.ListServiceAccounts(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list service accounts in %s: %w", projectID, err)
	}
	if !slices.Contains(emails, email) {
		slog.Info("Service account absent, nothing to clean up", "email", email)
		return nil
	}

	if err := m.api.DeleteServiceAccount(ctx, email); err != nil {
		return fmt.Errorf("delete service account %s: %w", email, err)
	}
	slog.Info("Removed service account", "email", email)
	return nil
}

// readKeyThroughTempFile stages raw key material in a scoped temp file,
// reads it back, and removes the file before returning on success and
// failure alike. The key never outlives the call on disk.
func readKeyThroughTempFile(raw []byte) (ServiceAccountKey, error) {
	f, err := os.CreateTemp("", "garsync-sa-key-*.json")
	if err != nil {
		return ServiceAccountKey{}, fmt.Errorf("stage key file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return ServiceAccountKey{}, fmt.Errorf("write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return ServiceAccountKey{}, fmt.Errorf("close key file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccountKey{}, fmt.Errorf("read key file: %w", err)
	}

	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return ServiceAccountKey{}, fmt.Errorf("parse key file: %w", err)
	}
	return key, nil
}
