// Copyright 2025 BrainSAIT
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainsait/platform/orchestrator/request"
)

func TestResolveDefaults(t *testing.T) {
	snap := Resolve()

	assert.Equal(t, ModeSimple, snap.Mode)
	assert.Equal(t, DefaultListenAddr, snap.ListenAddr)
	assert.Equal(t, DefaultAuditCapacity, snap.AuditCapacity)
	assert.Empty(t, snap.AvailableCapabilities())
	assert.Equal(t, DefaultTimeout, snap.TimeoutFor(request.CapabilityClaimValidation))
}

func TestResolvePrecedence(t *testing.T) {
	env := &Settings{
		Mode: "simple",
		Capabilities: map[string]CapabilitySettings{
			"claim_validation": {Endpoint: "https://env.example.com", APIKey: "env-key"},
		},
	}
	file := &Settings{
		Capabilities: map[string]CapabilitySettings{
			"claim_validation": {Endpoint: "https://file.example.com"},
		},
		AuditCapacity: 50,
	}
	overrides := &Settings{Mode: "advanced"}

	// Later layers win.
	snap := Resolve(env, file, overrides)

	assert.Equal(t, ModeAdvanced, snap.Mode)
	assert.Equal(t, 50, snap.AuditCapacity)

	cfg, ok := snap.Capability(request.CapabilityClaimValidation)
	require.True(t, ok)
	assert.Equal(t, "https://file.example.com", cfg.Endpoint)
	// API key falls through from the env layer.
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestAvailableRequiresEndpointAndCredential(t *testing.T) {
	snap := Resolve(&Settings{
		Capabilities: map[string]CapabilitySettings{
			"claim_validation":    {Endpoint: "https://nphies.example.com", APIKey: "token"},
			"knowledge_retrieval": {Endpoint: "https://rag.example.com"},
		},
	})

	assert.True(t, snap.Available(request.CapabilityClaimValidation))
	assert.False(t, snap.Available(request.CapabilityKnowledgeRetrieval), "missing credential")
	assert.False(t, snap.Available(request.CapabilityClinicalDecision), "not configured")
}

func TestModeGatesAdvancedCapabilities(t *testing.T) {
	caps := map[string]CapabilitySettings{
		"transcript_processing": {Endpoint: "https://ambient.example.com", APIKey: "k"},
		"assistant_intent":      {Endpoint: "https://ava.example.com", APIKey: "k"},
		"claim_validation":      {Endpoint: "https://nphies.example.com", APIKey: "k"},
	}

	simple := Resolve(&Settings{Mode: "simple", Capabilities: caps})
	assert.True(t, simple.Available(request.CapabilityClaimValidation))
	assert.False(t, simple.Available(request.CapabilityTranscriptProcessing))
	assert.False(t, simple.Available(request.CapabilityAssistantIntent))

	advanced := Resolve(&Settings{Mode: "advanced", Capabilities: caps})
	assert.True(t, advanced.Available(request.CapabilityTranscriptProcessing))
	assert.True(t, advanced.Available(request.CapabilityAssistantIntent))
}

func TestPerCapabilityTimeout(t *testing.T) {
	snap := Resolve(&Settings{
		Capabilities: map[string]CapabilitySettings{
			"knowledge_retrieval": {Endpoint: "https://rag.example.com", APIKey: "k", TimeoutSeconds: 5},
		},
	})

	assert.Equal(t, 5*time.Second, snap.TimeoutFor(request.CapabilityKnowledgeRetrieval))
	assert.Equal(t, DefaultTimeout, snap.TimeoutFor(request.CapabilityClaimValidation))
}

func TestFromEnvLegacyAliases(t *testing.T) {
	t.Setenv("NPHIES_ENDPOINT", "https://nphies.sa/api")
	t.Setenv("NPHIES_ACCESS_TOKEN", "nphies-token")
	t.Setenv("NVIDIA_RAG_ENDPOINT", "https://rag.example.com")
	t.Setenv("NVIDIA_API_KEY", "nvidia-key")
	t.Setenv("BRAINSAIT_MODE", "advanced")

	settings := FromEnv()
	snap := Resolve(settings)

	assert.Equal(t, ModeAdvanced, snap.Mode)
	assert.True(t, snap.Available(request.CapabilityClaimValidation))
	assert.True(t, snap.Available(request.CapabilityKnowledgeRetrieval))

	cfg, _ := snap.Capability(request.CapabilityClaimValidation)
	assert.Equal(t, "https://nphies.sa/api", cfg.Endpoint)
	assert.Equal(t, "nphies-token", cfg.APIKey)
}

func TestFromEnvExplicitBeatsAlias(t *testing.T) {
	t.Setenv("NPHIES_ENDPOINT", "https://legacy.example.com")
	t.Setenv("BRAINSAIT_CLAIM_VALIDATION_ENDPOINT", "https://new.example.com")
	t.Setenv("BRAINSAIT_CLAIM_VALIDATION_API_KEY", "new-key")

	snap := Resolve(FromEnv())
	cfg, ok := snap.Capability(request.CapabilityClaimValidation)
	require.True(t, ok)
	assert.Equal(t, "https://new.example.com", cfg.Endpoint)
}

func TestLoadAndSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	original := &Settings{
		Mode:          "advanced",
		AuditCapacity: 250,
		Capabilities: map[string]CapabilitySettings{
			"claim_validation": {Endpoint: "https://nphies.example.com", APIKey: "token", TimeoutSeconds: 10},
		},
		Jira: JiraSettings{Site: "https://brainsait.atlassian.net", Email: "ops@example.com", Token: "t", ProjectKey: "CARE"},
	}
	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadMissingFileIsEmptyLayer(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Settings{}, loaded)
}
