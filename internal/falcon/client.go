package falcon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the US-1 Falcon API endpoint.
	DefaultBaseURL = "https://api.crowdstrike.com"

	registriesPath = "/container-security/entities/registries/v1"
)

// API defines the registry-entity operations used by the reconciler.
type API interface {
	ListRegistryIDs(ctx context.Context) ([]string, error)
	GetRegistry(ctx context.Context, id string) (Entry, error)
	CreateRegistry(ctx context.Context, payload RegistryPayload) error
	DeleteRegistries(ctx context.Context, ids []string) error
}

// Client talks to the Falcon container-security registry API. Every call is
// authenticated with an OAuth2 client-credentials token.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a Client for the given API credentials. An empty
// baseURL selects DefaultBaseURL.
func NewClient(ctx context.Context, clientID, clientSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + "/oauth2/token",
	}
	return &Client{
		http:    cc.Client(ctx),
		baseURL: baseURL,
	}
}

// ListRegistryIDs returns the ids of all registry entries. An empty list is
// not an error.
func (c *Client) ListRegistryIDs(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "", nil)
	if err != nil {
		return nil, err
	}

	var ids []string
	if len(resp.Resources) > 0 {
		if err := json.Unmarshal(resp.Resources, &ids); err != nil {
			return nil, fmt.Errorf("decode registry ids: %w", err)
		}
	}
	return ids, nil
}

// GetRegistry fetches the detail record for one entry id.
func (c *Client) GetRegistry(ctx context.Context, id string) (Entry, error) {
	resp, err := c.do(ctx, http.MethodGet, "ids="+url.QueryEscape(id), nil)
	if err != nil {
		return Entry{}, err
	}

	var entries []Entry
	if len(resp.Resources) > 0 {
		if err := json.Unmarshal(resp.Resources, &entries); err != nil {
			return Entry{}, fmt.Errorf("decode registry %s: %w", id, err)
		}
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("registry %s: empty response", id)
	}

	entry := entries[0]
	if entry.ID == "" {
		entry.ID = id
	}
	return entry, nil
}

// CreateRegistry registers one repository.
func (c *Client) CreateRegistry(ctx context.Context, payload RegistryPayload) error {
	_, err := c.do(ctx, http.MethodPost, "", payload)
	return err
}

// DeleteRegistries hard-deletes entries by id. Deleted records are erased
// permanently after a 48-hour grace period.
func (c *Client) DeleteRegistries(ctx context.Context, ids []string) error {
	query := url.Values{"ids": ids}.Encode()
	_, err := c.do(ctx, http.MethodDelete, query, nil)
	return err
}

// apiError is one entry of the response body's error list.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// apiResponse is the envelope every registry endpoint responds with.
type apiResponse struct {
	Resources json.RawMessage `json:"resources"`
	Errors    []apiError      `json:"errors"`
}

// do issues one request against the registries endpoint. Status 200 is the
// only success value; any other status surfaces the body's error list.
func (c *Client) do(ctx context.Context, method, rawQuery string, body any) (*apiResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + registriesPath
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s registries: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out apiResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode response (%s): %w", resp.Status, err)
		}
	}

	if resp.StatusCode != http.StatusOK {
		return &out, fmt.Errorf("%s registries: %s%s", method, resp.Status, formatAPIErrors(out.Errors))
	}
	return &out, nil
}

func formatAPIErrors(errs []apiError) string {
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("%d: %s", e.Code, e.Message)
	}
	return ": " + strings.Join(parts, "; ")
}
