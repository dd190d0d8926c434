package gcp

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&googleapi.Error{Code: 404}) {
		t.Error("REST 404 should be not-found")
	}
	if !IsNotFound(status.Error(codes.NotFound, "missing")) {
		t.Error("gRPC NotFound should be not-found")
	}
	if !IsNotFound(fmt.Errorf("describe: %w", &googleapi.Error{Code: 404})) {
		t.Error("wrapped REST 404 should be not-found")
	}
	if IsNotFound(&googleapi.Error{Code: 403}) {
		t.Error("403 is not not-found")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain errors are not not-found")
	}
}

func TestIsPermissionDenied(t *testing.T) {
	if !IsPermissionDenied(&googleapi.Error{Code: 403}) {
		t.Error("REST 403 should be permission-denied")
	}
	if !IsPermissionDenied(status.Error(codes.PermissionDenied, "nope")) {
		t.Error("gRPC PermissionDenied should be permission-denied")
	}
	if IsPermissionDenied(status.Error(codes.Unavailable, "down")) {
		t.Error("Unavailable is not permission-denied")
	}
}

func TestIsServiceDisabled(t *testing.T) {
	err := status.Error(codes.PermissionDenied, "Artifact Registry API has not been used: SERVICE_DISABLED")
	if !IsServiceDisabled(err) {
		t.Error("SERVICE_DISABLED reason should be detected")
	}
	if IsServiceDisabled(status.Error(codes.PermissionDenied, "caller lacks permission")) {
		t.Error("plain permission denial is not service-disabled")
	}
	if IsServiceDisabled(nil) {
		t.Error("nil is not service-disabled")
	}
}

func TestRepositoryID(t *testing.T) {
	got := repositoryID("projects/p1/locations/us-central1/repositories/r1")
	if got != "r1" {
		t.Errorf("repositoryID() = %q, want r1", got)
	}
	if repositoryID("noslash") != "noslash" {
		t.Error("names without slashes pass through")
	}
}
