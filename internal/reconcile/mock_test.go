package reconcile

import (
	"context"

	"github.com/ppiankov/garsync/internal/falcon"
	"github.com/ppiankov/garsync/internal/gcp"
)

type mockDiscoverer struct {
	registries []gcp.RegistryDescriptor
	err        error
}

func (m *mockDiscoverer) Discover(_ context.Context) ([]gcp.RegistryDescriptor, error) {
	return m.registries, m.err
}

type mockCreds struct {
	key        gcp.ServiceAccountKey
	email      string
	ensureErr  error
	cleanupErr error

	ensureCalls  int
	cleanupCalls int
}

func (m *mockCreds) EnsureIdentityAndKey(_ context.Context, _ string) (gcp.ServiceAccountKey, string, error) {
	m.ensureCalls++
	return m.key, m.email, m.ensureErr
}

func (m *mockCreds) CleanupIdentity(_ context.Context, _ string) error {
	m.cleanupCalls++
	return m.cleanupErr
}

type mockGrantor struct {
	projects []string // project IDs in call order
	fail     bool
}

func (m *mockGrantor) GrantRoles(_ context.Context, projectID, _ string) []gcp.GrantResult {
	m.projects = append(m.projects, projectID)
	results := make([]gcp.GrantResult, len(gcp.ScannerRoles))
	for i, role := range gcp.ScannerRoles {
		results[i] = gcp.GrantResult{Role: role}
		if m.fail {
			results[i].Err = errTest
		}
	}
	return results
}

type mockFalcon struct {
	ids       []string
	listErr   error
	entries   map[string]falcon.Entry
	detailErr map[string]error
	createErr map[string]error // keyed by url_uniqueness_key

	created []falcon.RegistryPayload
	deleted [][]string
	delErr  map[string]error // keyed by id
}

func newMockFalcon() *mockFalcon {
	return &mockFalcon{
		entries:   make(map[string]falcon.Entry),
		detailErr: make(map[string]error),
		createErr: make(map[string]error),
		delErr:    make(map[string]error),
	}
}

func (m *mockFalcon) ListRegistryIDs(_ context.Context) ([]string, error) {
	return m.ids, m.listErr
}

func (m *mockFalcon) GetRegistry(_ context.Context, id string) (falcon.Entry, error) {
	if err, ok := m.detailErr[id]; ok {
		return falcon.Entry{}, err
	}
	return m.entries[id], nil
}

func (m *mockFalcon) CreateRegistry(_ context.Context, payload falcon.RegistryPayload) error {
	if err, ok := m.createErr[payload.URLUniquenessKey]; ok {
		return err
	}
	m.created = append(m.created, payload)
	return nil
}

func (m *mockFalcon) DeleteRegistries(_ context.Context, ids []string) error {
	for _, id := range ids {
		if err, ok := m.delErr[id]; ok {
			return err
		}
	}
	m.deleted = append(m.deleted, ids)
	return nil
}

func confirmYes(_ context.Context, _ string) (bool, error) { return true, nil }
func confirmNo(_ context.Context, _ string) (bool, error)  { return false, nil }

func makeDescriptor(projectID, location, repoID string) gcp.RegistryDescriptor {
	return gcp.RegistryDescriptor{
		Name:         "projects/" + projectID + "/locations/" + location + "/repositories/" + repoID,
		ProjectID:    projectID,
		Location:     location,
		RepositoryID: repoID,
	}
}
