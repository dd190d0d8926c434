package gcp

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsNotFound reports whether err is a not-found error from either the gRPC
// or the REST surface of the Google APIs.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return status.Code(err) == codes.NotFound
}

// IsPermissionDenied reports whether err is a permission-denied error.
func IsPermissionDenied(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusForbidden
	}
	return status.Code(err) == codes.PermissionDenied
}

// IsServiceDisabled reports whether err indicates the Artifact Registry API
// is not enabled for the project. The API signals this as a
// permission-denied with a SERVICE_DISABLED reason.
func IsServiceDisabled(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SERVICE_DISABLED")
}
