package gcp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	ar "cloud.google.com/go/artifactregistry/apiv1"
	arpb "cloud.google.com/go/artifactregistry/apiv1/artifactregistrypb"
	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/iam/v1"
	"google.golang.org/api/iterator"
)

// Client implements the discovery, IAM, and policy APIs using the real
// GCP SDKs.
type Client struct {
	projects   *resourcemanager.ProjectsClient
	registries *ar.Client
	iam        *iam.Service
	crm        *cloudresourcemanager.Service
}

// NewClient creates a Client using application default credentials.
func NewClient(ctx context.Context) (*Client, error) {
	projects, err := resourcemanager.NewProjectsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create resource manager client: %w", err)
	}
	registries, err := ar.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create artifact registry client: %w", err)
	}
	iamSvc, err := iam.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create IAM service: %w", err)
	}
	crmSvc, err := cloudresourcemanager.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create cloud resource manager service: %w", err)
	}

	return &Client{
		projects:   projects,
		registries: registries,
		iam:        iamSvc,
		crm:        crmSvc,
	}, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return errors.Join(c.projects.Close(), c.registries.Close())
}

// SearchProjects returns the IDs of all projects visible to the caller's
// credentials.
func (c *Client) SearchProjects(ctx context.Context) ([]string, error) {
	it := c.projects.SearchProjects(ctx, &resourcemanagerpb.SearchProjectsRequest{})

	var ids []string
	for {
		project, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("search projects: %w", err)
		}
		ids = append(ids, project.GetProjectId())
	}

	slog.Debug("Searched projects", "count", len(ids))
	return ids, nil
}

// ListRepositories returns descriptors for all repositories in a given
// project and location.
func (c *Client) ListRepositories(ctx context.Context, projectID, location string) ([]RegistryDescriptor, error) {
	parent := fmt.Sprintf("projects/%s/locations/%s", projectID, location)
	it := c.registries.ListRepositories(ctx, &arpb.ListRepositoriesRequest{
		Parent: parent,
	})

	var repos []RegistryDescriptor
	for {
		repo, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		repos = append(repos, RegistryDescriptor{
			Name:         repo.GetName(),
			ProjectID:    projectID,
			Location:     location,
			RepositoryID: repositoryID(repo.GetName()),
		})
	}

	slog.Debug("Listed repositories", "parent", parent, "count", len(repos))
	return repos, nil
}

// GetServiceAccount checks that a service account exists.
func (c *Client) GetServiceAccount(ctx context.Context, email string) error {
	_, err := c.iam.Projects.ServiceAccounts.Get(accountResource(email)).Context(ctx).Do()
	return err
}

// CreateServiceAccount creates a service account in the given project.
func (c *Client) CreateServiceAccount(ctx context.Context, projectID, accountID, displayName, description string) error {
	req := &iam.CreateServiceAccountRequest{
		AccountId: accountID,
		ServiceAccount: &iam.ServiceAccount{
			DisplayName: displayName,
			Description: description,
		},
	}
	_, err := c.iam.Projects.ServiceAccounts.Create("projects/"+projectID, req).Context(ctx).Do()
	return err
}

// ListServiceAccounts returns the emails of all service accounts in a project.
func (c *Client) ListServiceAccounts(ctx context.Context, projectID string) ([]string, error) {
	var emails []string
	call := c.iam.Projects.ServiceAccounts.List("projects/" + projectID)
	err := call.Pages(ctx, func(resp *iam.ListServiceAccountsResponse) error {
		for _, account := range resp.Accounts {
			emails = append(emails, account.Email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}

// DeleteServiceAccount deletes a service account by email.
func (c *Client) DeleteServiceAccount(ctx context.Context, email string) error {
	_, err := c.iam.Projects.ServiceAccounts.Delete(accountResource(email)).Context(ctx).Do()
	return err
}

// CreateServiceAccountKey mints a new key for the account and returns the
// decoded JSON key file bytes.
func (c *Client) CreateServiceAccountKey(ctx context.Context, email string) ([]byte, error) {
	req := &iam.CreateServiceAccountKeyRequest{}
	key, err := c.iam.Projects.ServiceAccounts.Keys.Create(accountResource(email), req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(key.PrivateKeyData)
	if err != nil {
		return nil, fmt.Errorf("decode key material: %w", err)
	}
	return data, nil
}

// GetProjectPolicy fetches a project's IAM policy.
func (c *Client) GetProjectPolicy(ctx context.Context, projectID string) (*cloudresourcemanager.Policy, error) {
	return c.crm.Projects.GetIamPolicy(projectID, &cloudresourcemanager.GetIamPolicyRequest{}).Context(ctx).Do()
}

// SetProjectPolicy replaces a project's IAM policy.
func (c *Client) SetProjectPolicy(ctx context.Context, projectID string, policy *cloudresourcemanager.Policy) error {
	_, err := c.crm.Projects.SetIamPolicy(projectID, &cloudresourcemanager.SetIamPolicyRequest{
		Policy: policy,
	}).Context(ctx).Do()
	return err
}

// accountResource builds the IAM resource name for a service account email.
// The wildcard project is accepted for email-addressed accounts.
func accountResource(email string) string {
	return "projects/-/serviceAccounts/" + email
}

// repositoryID extracts the repository ID from a full resource name.
// Format: projects/{project}/locations/{location}/repositories/{repo}
func repositoryID(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}
