package falcon

import "fmt"

// TypeGAR tags the registry entries this tool manages. Entries of any other
// type are never deletion candidates.
const TypeGAR = "gar"

// Entry is a registry registration record owned by the Falcon service.
// It is correlated to a source registry only by the alias and URL submitted
// at creation.
type Entry struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Alias string `json:"user_defined_alias"`
	URL   string `json:"url"`
}

// RegistryPayload is the exact create-registry wire shape.
type RegistryPayload struct {
	Type             string     `json:"type"`
	URL              string     `json:"url"`
	URLUniquenessKey string     `json:"url_uniqueness_key"`
	UserDefinedAlias string     `json:"user_defined_alias"`
	Credential       Credential `json:"credential"`
}

// Credential wraps the registry access credential.
type Credential struct {
	Details CredentialDetails `json:"details"`
}

// CredentialDetails scopes a service account key to one repository.
type CredentialDetails struct {
	ProjectID          string             `json:"project_id"`
	ScopeName          string             `json:"scope_name"`
	ServiceAccountJSON ServiceAccountJSON `json:"service_account_json"`
}

// ServiceAccountJSON carries the GCP key material inside the payload.
type ServiceAccountJSON struct {
	Type         string `json:"type"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	ProjectID    string `json:"project_id"`
}

// NewGARPayload builds the registration payload for one repository. The
// uniqueness key projectID/repositoryID must be globally unique to the
// service; re-registering the same repository is rejected as a duplicate.
func NewGARPayload(projectID, location, repositoryID string, key ServiceAccountJSON) RegistryPayload {
	return RegistryPayload{
		Type:             TypeGAR,
		URL:              fmt.Sprintf("https://%s-docker.pkg.dev/", location),
		URLUniquenessKey: projectID + "/" + repositoryID,
		UserDefinedAlias: fmt.Sprintf("GAR-%s-%s", projectID, repositoryID),
		Credential: Credential{
			Details: CredentialDetails{
				ProjectID:          projectID,
				ScopeName:          repositoryID,
				ServiceAccountJSON: key,
			},
		},
	}
}

// FilterGAR returns only the gar-typed entries. No I/O.
func FilterGAR(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Type == TypeGAR {
			out = append(out, e)
		}
	}
	return out
}
