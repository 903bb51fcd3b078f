package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	clearWellKnownEnv(t)
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearWellKnownEnv keeps ambient API keys from leaking into the registry
// under test.
func clearWellKnownEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := writeCatalog(t, `
providers:
  - id: openai
    api_key: sk-test-openai
  - id: gemini
    api_key: test-gemini
    default: true
`)

	reg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "gemini", reg.DefaultID())
	assert.Equal(t, []string{"gemini", "openai"}, reg.IDs())

	cred, err := reg.Resolve("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", cred.ID())
	assert.Equal(t, "sk-test-openai", cred.Secret())
}

func TestLoadEnvOverlay(t *testing.T) {
	clearWellKnownEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-gemini-key")

	reg, err := Load("", "gemini")
	require.NoError(t, err)

	cred, err := reg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cred.ID())
	assert.Equal(t, "env-gemini-key", cred.Secret())
}

func TestLoadAPIKeyEnvIndirection(t *testing.T) {
	t.Setenv("MY_CUSTOM_KEY", "indirect-secret")
	path := writeCatalog(t, `
providers:
  - id: custom-llm
    api_key_env: MY_CUSTOM_KEY
`)

	reg, err := Load(path, "custom-llm")
	require.NoError(t, err)

	cred, err := reg.Resolve("custom-llm")
	require.NoError(t, err)
	assert.Equal(t, "indirect-secret", cred.Secret())
}

func TestLoadRejectsBadProviderID(t *testing.T) {
	path := writeCatalog(t, `
providers:
  - id: "Not Valid!"
    api_key: whatever
`)

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	clearWellKnownEnv(t)
	reg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	require.NoError(t, err)
	assert.NotNil(t, reg)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	reg := NewStatic("gemini", map[string]string{
		"gemini": "g-key",
		"openai": "o-key",
	})

	for _, requested := range []string{"", "nonexistent", "OPENAI"} {
		cred, err := reg.Resolve(requested)
		require.NoError(t, err, "requested=%q", requested)
		assert.Equal(t, "gemini", cred.ID(), "requested=%q", requested)
	}
}

func TestResolveUnknownWithoutDefault(t *testing.T) {
	reg := NewStatic("", map[string]string{"openai": "o-key"})

	_, err := reg.Resolve("nonexistent")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestCredentialRedaction(t *testing.T) {
	reg := NewStatic("openai", map[string]string{"openai": "sk-very-secret"})
	cred, err := reg.Resolve("openai")
	require.NoError(t, err)

	formatted := fmt.Sprintf("%v %s %+v", cred, cred, cred)
	assert.False(t, strings.Contains(formatted, "sk-very-secret"),
		"formatted credential leaked the secret: %s", formatted)

	logged := cred.LogValue().String()
	assert.False(t, strings.Contains(logged, "sk-very-secret"),
		"log value leaked the secret: %s", logged)
}
