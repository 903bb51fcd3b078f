// Package provider holds the process-wide AI provider credential registry.
// Secrets are operator-supplied system credentials used on behalf of all
// users; they are never persisted per-user and never leave the server side.
package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

var ErrUnknownProvider = errors.New("unknown provider and no default configured")

var providerIDRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Credential is a handle to a configured provider secret. The secret is
// unexported so it cannot leak through struct serialization; callers that
// actually talk to the provider use Secret().
type Credential struct {
	id      string
	secret  string
	baseURL string
}

// ID returns the provider identifier, e.g. "openai" or "gemini".
func (c Credential) ID() string { return c.id }

// Secret returns the raw API key. Server-side use only.
func (c Credential) Secret() string { return c.secret }

// BaseURL returns the provider API base URL, if configured.
func (c Credential) BaseURL() string { return c.baseURL }

// String redacts the secret so handles are safe to format.
func (c Credential) String() string {
	return fmt.Sprintf("provider(%s secret=[redacted])", c.id)
}

// LogValue keeps the secret out of structured logs.
func (c Credential) LogValue() slog.Value {
	return slog.GroupValue(slog.String("id", c.id))
}

// Registry maps provider identifiers to credentials. It is built once at
// startup and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	creds     map[string]Credential
	defaultID string
}

type catalogEntry struct {
	ID        string `yaml:"id"`
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Default   bool   `yaml:"default"`
}

type catalogFile struct {
	Providers []catalogEntry `yaml:"providers"`
}

// wellKnown maps built-in provider ids to their conventional env vars,
// consulted when no catalog file lists them.
var wellKnown = []struct {
	id, keyEnv, urlEnv string
}{
	{"openai", "OPENAI_API_KEY", "OPENAI_BASE_URL"},
	{"gemini", "GEMINI_API_KEY", "GEMINI_BASE_URL"},
	{"anthropic", "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL"},
}

// Load builds the registry from an optional YAML catalog file plus
// well-known environment variables. catalogPath may be empty or point to
// a missing file; env-configured providers still load. defaultID names
// the fallback provider; an entry flagged default in the catalog wins
// only when defaultID is empty.
func Load(catalogPath, defaultID string) (*Registry, error) {
	creds := make(map[string]Credential)

	if catalogPath != "" {
		data, err := os.ReadFile(catalogPath)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading provider catalog: %w", err)
		}
		if err == nil {
			var file catalogFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return nil, fmt.Errorf("parsing provider catalog: %w", err)
			}
			for _, entry := range file.Providers {
				if !providerIDRegexp.MatchString(entry.ID) {
					return nil, fmt.Errorf("invalid provider id %q in catalog", entry.ID)
				}
				secret := entry.APIKey
				if secret == "" && entry.APIKeyEnv != "" {
					secret = os.Getenv(entry.APIKeyEnv)
				}
				if secret == "" {
					continue
				}
				creds[entry.ID] = Credential{id: entry.ID, secret: secret, baseURL: entry.BaseURL}
				if entry.Default && defaultID == "" {
					defaultID = entry.ID
				}
			}
		}
	}

	for _, w := range wellKnown {
		if _, exists := creds[w.id]; exists {
			continue
		}
		if secret := os.Getenv(w.keyEnv); secret != "" {
			creds[w.id] = Credential{id: w.id, secret: secret, baseURL: os.Getenv(w.urlEnv)}
		}
	}

	if _, ok := creds[defaultID]; !ok {
		defaultID = ""
	}

	return &Registry{creds: creds, defaultID: defaultID}, nil
}

// NewStatic builds a registry from explicit credentials. Intended for tests.
func NewStatic(defaultID string, secrets map[string]string) *Registry {
	creds := make(map[string]Credential, len(secrets))
	for id, secret := range secrets {
		creds[id] = Credential{id: id, secret: secret}
	}
	if _, ok := creds[defaultID]; !ok {
		defaultID = ""
	}
	return &Registry{creds: creds, defaultID: defaultID}
}

// Resolve maps a requested provider id to a credential. An empty or
// unknown id falls back to the default provider, so every valid
// registration resolves to some usable credential. It fails with
// ErrUnknownProvider only when no default is configured.
func (r *Registry) Resolve(requestedID string) (Credential, error) {
	if cred, ok := r.creds[requestedID]; ok {
		return cred, nil
	}
	if cred, ok := r.creds[r.defaultID]; ok {
		return cred, nil
	}
	return Credential{}, ErrUnknownProvider
}

// DefaultID returns the configured fallback provider id, or "" if none.
func (r *Registry) DefaultID() string { return r.defaultID }

// IDs returns the configured provider identifiers, sorted. Safe to expose
// to clients: no secrets.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.creds))
	for id := range r.creds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports how many providers are configured.
func (r *Registry) Len() int { return len(r.creds) }
