package gcp

import (
	"context"
	"slices"

	"google.golang.org/api/cloudresourcemanager/v1"
)

// mockCloud implements DiscoveryAPI, IAMAPI, and PolicyAPI for testing.
type mockCloud struct {
	projects       []string
	searchErr      error
	repos          map[string][]RegistryDescriptor // keyed by "project/location"
	listReposErr   map[string]error                // keyed by "project/location"
	listRepoCalls  []string

	accounts     map[string]bool // existing SA emails
	getErr       map[string]error
	createErr    error
	deleteErr    error
	keyData      []byte
	keyErr       error
	created      []string // created account IDs
	deleted      []string // deleted emails
	listSAErr    error
	keysMinted   int

	policies     map[string]*cloudresourcemanager.Policy
	getPolicyErr map[string]error
	setPolicyErr map[string]error
	setCalls     int
}

func newMockCloud() *mockCloud {
	return &mockCloud{
		repos:        make(map[string][]RegistryDescriptor),
		listReposErr: make(map[string]error),
		accounts:     make(map[string]bool),
		getErr:       make(map[string]error),
		policies:     make(map[string]*cloudresourcemanager.Policy),
		getPolicyErr: make(map[string]error),
		setPolicyErr: make(map[string]error),
	}
}

func (m *mockCloud) SearchProjects(_ context.Context) ([]string, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.projects, nil
}

func (m *mockCloud) ListRepositories(_ context.Context, projectID, location string) ([]RegistryDescriptor, error) {
	key := projectID + "/" + location
	m.listRepoCalls = append(m.listRepoCalls, key)
	if err, ok := m.listReposErr[key]; ok {
		return nil, err
	}
	return m.repos[key], nil
}

func (m *mockCloud) GetServiceAccount(_ context.Context, email string) error {
	if err, ok := m.getErr[email]; ok {
		return err
	}
	return nil
}

func (m *mockCloud) CreateServiceAccount(_ context.Context, _, accountID, _, _ string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, accountID)
	return nil
}

func (m *mockCloud) ListServiceAccounts(_ context.Context, _ string) ([]string, error) {
	if m.listSAErr != nil {
		return nil, m.listSAErr
	}
	var emails []string
	for email := range m.accounts {
		emails = append(emails, email)
	}
	slices.Sort(emails)
	return emails, nil
}

func (m *mockCloud) DeleteServiceAccount(_ context.Context, email string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, email)
	return nil
}

func (m *mockCloud) CreateServiceAccountKey(_ context.Context, _ string) ([]byte, error) {
	if m.keyErr != nil {
		return nil, m.keyErr
	}
	m.keysMinted++
	return m.keyData, nil
}

func (m *mockCloud) GetProjectPolicy(_ context.Context, projectID string) (*cloudresourcemanager.Policy, error) {
	if err, ok := m.getPolicyErr[projectID]; ok {
		return nil, err
	}
	if p, ok := m.policies[projectID]; ok {
		return p, nil
	}
	return &cloudresourcemanager.Policy{}, nil
}

func (m *mockCloud) SetProjectPolicy(_ context.Context, projectID string, policy *cloudresourcemanager.Policy) error {
	if err, ok := m.setPolicyErr[projectID]; ok {
		return err
	}
	m.setCalls++
	m.policies[projectID] = policy
	return nil
}

func makeDescriptor(projectID, location, repoID string) RegistryDescriptor {
	name := "projects/" + projectID + "/locations/" + location + "/repositories/" + repoID
	return RegistryDescriptor{
		Name:         name,
		ProjectID:    projectID,
		Location:     location,
		RepositoryID: repoID,
	}
}
