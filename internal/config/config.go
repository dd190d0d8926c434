package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultIdentityName is the short name of the scanner service account
// managed in the host project.
const DefaultIdentityName = "crowdstrike-registry-scanner"

// DefaultLocations are the Artifact Registry locations queried during
// discovery. The repository listing API is location-scoped, so locations
// are enumerated explicitly rather than wildcarded.
var DefaultLocations = []string{
	"us-central1",
	"us-east1",
	"us-west1",
	"europe-west1",
	"asia-east1",
}

// Config holds everything a run needs, resolved before any workflow begins.
type Config struct {
	HostProject        string
	FalconClientID     string
	FalconClientSecret string
	FalconAPIBase      string
	IdentityName       string
	Locations          []string
}

// FromEnv builds a Config from the required environment variables.
// A missing variable is a fatal configuration error.
func FromEnv() (Config, error) {
	cfg := Config{
		HostProject:        os.Getenv("GCP_HOST_PROJECT"),
		FalconClientID:     os.Getenv("FALCON_CLIENT_ID"),
		FalconClientSecret: os.Getenv("FALCON_CLIENT_SECRET"),
		IdentityName:       DefaultIdentityName,
		Locations:          slices.Clone(DefaultLocations),
	}

	var missing []string
	if cfg.HostProject == "" {
		missing = append(missing, "GCP_HOST_PROJECT")
	}
	if cfg.FalconClientID == "" {
		missing = append(missing, "FALCON_CLIENT_ID")
	}
	if cfg.FalconClientSecret == "" {
		missing = append(missing, "FALCON_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// File holds optional overrides loaded from .garsync.yaml.
type File struct {
	IdentityName  string   `yaml:"identity_name"`
	Locations     []string `yaml:"locations"`
	FalconAPIBase string   `yaml:"falcon_api_base"`
}

// Load searches for .garsync.yaml or .garsync.yml in the given directory and
// returns the parsed overrides. Returns an empty File if no file is found.
func Load(dir string) (File, error) {
	candidates := []string{
		filepath.Join(dir, ".garsync.yaml"),
		filepath.Join(dir, ".garsync.yml"),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return File{}, fmt.Errorf("read config %s: %w", path, err)
		}

		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		return f, nil
	}

	return File{}, nil
}

// Apply copies the file's non-empty overrides onto cfg.
func (f File) Apply(cfg *Config) {
	if f.IdentityName != "" {
		cfg.IdentityName = f.IdentityName
	}
	if len(f.Locations) > 0 {
		cfg.Locations = slices.Clone(f.Locations)
	}
	if f.FalconAPIBase != "" {
		cfg.FalconAPIBase = f.FalconAPIBase
	}
}
