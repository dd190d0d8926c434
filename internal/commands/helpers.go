package commands

import (
	"fmt"
	"strings"
)

// enhanceError wraps an error with context and suggestions for common cloud
// issues.
func enhanceError(action string, err error) error {
	msg := err.Error()

	var hint string
	switch {
	case strings.Contains(msg, "GOOGLE_APPLICATION_CREDENTIALS"):
		hint = "Configure GCP credentials: set GOOGLE_APPLICATION_CREDENTIALS or run 'gcloud auth application-default login'"
	case strings.Contains(msg, "could not find default credentials"):
		hint = "Configure GCP credentials: run 'gcloud auth application-default login'"
	case strings.Contains(msg, "PERMISSION_DENIED") || strings.Contains(msg, "PermissionDenied"):
		hint = "Insufficient permissions. The caller needs resourcemanager.projects.list and artifactregistry.repositories.list"
	case strings.Contains(msg, "invalid_client") || strings.Contains(msg, "access denied"):
		hint = "Check FALCON_CLIENT_ID and FALCON_CLIENT_SECRET, and that the API client has Falcon Container Image scopes"
	}

	if hint != "" {
		return fmt.Errorf("%s: %w\n  hint: %s", action, err, hint)
	}
	return fmt.Errorf("%s: %w", action, err)
}
