package gcp

// RegistryDescriptor identifies one Artifact Registry repository discovered
// during a run. Descriptors are immutable and live only for the run.
type RegistryDescriptor struct {
	Name         string // full resource name
	ProjectID    string
	Location     string
	RepositoryID string
}

// ServiceAccountKey mirrors the JSON key file GCP issues for a service
// account. Key material is a secret and must never be logged in full.
type ServiceAccountKey struct {
	Type         string `json:"type"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	ProjectID    string `json:"project_id"`
}
