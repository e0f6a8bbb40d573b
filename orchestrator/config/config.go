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

// Package config resolves orchestrator settings from environment variables,
// an optional YAML settings file, and explicit runtime overrides into an
// immutable Snapshot. Precedence, highest first: runtime overrides, settings
// file, environment, built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"brainsait/platform/orchestrator/request"
)

// CapabilitySettings holds the raw per-capability configuration as read
// from a single source.
type CapabilitySettings struct {
	Endpoint       string `yaml:"endpoint,omitempty"`
	APIKey         string `yaml:"api_key,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// JiraSettings holds Jira Cloud sync credentials.
type JiraSettings struct {
	Site       string `yaml:"site,omitempty"`
	Email      string `yaml:"email,omitempty"`
	Token      string `yaml:"token,omitempty"`
	ProjectKey string `yaml:"project_key,omitempty"`
}

// ConfluenceSettings holds Confluence Cloud sync credentials.
type ConfluenceSettings struct {
	Site     string `yaml:"site,omitempty"`
	Email    string `yaml:"email,omitempty"`
	Token    string `yaml:"token,omitempty"`
	SpaceKey string `yaml:"space_key,omitempty"`
}

// Settings is one raw configuration layer. Zero values mean "not set here";
// Resolve merges layers by precedence.
type Settings struct {
	Mode               string                        `yaml:"mode,omitempty"`
	ListenAddr         string                        `yaml:"listen_addr,omitempty"`
	AuditCapacity      int                           `yaml:"audit_capacity,omitempty"`
	RateLimitPerMinute int                           `yaml:"rate_limit_per_minute,omitempty"`
	DatabaseURL        string                        `yaml:"database_url,omitempty"`
	RedisURL           string                        `yaml:"redis_url,omitempty"`
	Capabilities       map[string]CapabilitySettings `yaml:"capabilities,omitempty"`
	Jira               JiraSettings                  `yaml:"jira,omitempty"`
	Confluence         ConfluenceSettings            `yaml:"confluence,omitempty"`
}

// Load reads a YAML settings file. A missing file is not an error; it
// returns an empty layer so callers can pass the result to Resolve
// unconditionally.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return &settings, nil
}

// Save writes a settings layer as YAML. Credentials may be present, so the
// file is written with owner-only permissions.
func Save(path string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

// envAliases maps each capability to legacy environment variable names kept
// for compatibility with earlier deployments.
var envAliases = map[request.Capability]struct{ endpoint, apiKey string }{
	request.CapabilityClaimValidation:      {"NPHIES_ENDPOINT", "NPHIES_ACCESS_TOKEN"},
	request.CapabilityClinicalDecision:     {"FHIR_BASE_URL", "CLAUDE_API_KEY"},
	request.CapabilityKnowledgeRetrieval:   {"NVIDIA_RAG_ENDPOINT", "NVIDIA_API_KEY"},
	request.CapabilityTranscriptProcessing: {"NVIDIA_AMBIENT_ENDPOINT", "NVIDIA_API_KEY"},
	request.CapabilityAssistantIntent:      {"NVIDIA_AVA_ENDPOINT", "NVIDIA_API_KEY"},
}

// FromEnv builds a settings layer from environment variables. Capability
// endpoints and keys use BRAINSAIT_<CAPABILITY>_ENDPOINT and
// BRAINSAIT_<CAPABILITY>_API_KEY, with the legacy names in envAliases
// accepted as fallbacks.
func FromEnv() *Settings {
	settings := &Settings{
		Mode:        os.Getenv("BRAINSAIT_MODE"),
		ListenAddr:  os.Getenv("BRAINSAIT_LISTEN_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Jira: JiraSettings{
			Site:       os.Getenv("JIRA_SITE"),
			Email:      os.Getenv("JIRA_EMAIL"),
			Token:      os.Getenv("JIRA_API_TOKEN"),
			ProjectKey: os.Getenv("JIRA_PROJECT_KEY"),
		},
		Confluence: ConfluenceSettings{
			Site:     os.Getenv("CONFLUENCE_SITE"),
			Email:    os.Getenv("CONFLUENCE_EMAIL"),
			Token:    os.Getenv("CONFLUENCE_API_TOKEN"),
			SpaceKey: os.Getenv("CONFLUENCE_SPACE_KEY"),
		},
	}

	if v := os.Getenv("BRAINSAIT_AUDIT_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.AuditCapacity = n
		}
	}
	if v := os.Getenv("BRAINSAIT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.RateLimitPerMinute = n
		}
	}

	for _, kind := range request.AllCapabilities() {
		prefix := "BRAINSAIT_" + strings.ToUpper(string(kind)) + "_"
		cap := CapabilitySettings{
			Endpoint: os.Getenv(prefix + "ENDPOINT"),
			APIKey:   os.Getenv(prefix + "API_KEY"),
		}
		if v := os.Getenv(prefix + "TIMEOUT_SECONDS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cap.TimeoutSeconds = n
			}
		}
		if alias, ok := envAliases[kind]; ok {
			if cap.Endpoint == "" {
				cap.Endpoint = os.Getenv(alias.endpoint)
			}
			if cap.APIKey == "" {
				cap.APIKey = os.Getenv(alias.apiKey)
			}
		}
		if cap != (CapabilitySettings{}) {
			if settings.Capabilities == nil {
				settings.Capabilities = make(map[string]CapabilitySettings)
			}
			settings.Capabilities[string(kind)] = cap
		}
	}

	return settings
}

// merge overlays b on top of a, field by field. Non-zero fields in b win.
func merge(a, b *Settings) *Settings {
	out := *a
	if b.Mode != "" {
		out.Mode = b.Mode
	}
	if b.ListenAddr != "" {
		out.ListenAddr = b.ListenAddr
	}
	if b.AuditCapacity != 0 {
		out.AuditCapacity = b.AuditCapacity
	}
	if b.RateLimitPerMinute != 0 {
		out.RateLimitPerMinute = b.RateLimitPerMinute
	}
	if b.DatabaseURL != "" {
		out.DatabaseURL = b.DatabaseURL
	}
	if b.RedisURL != "" {
		out.RedisURL = b.RedisURL
	}
	out.Jira = mergeJira(a.Jira, b.Jira)
	out.Confluence = mergeConfluence(a.Confluence, b.Confluence)

	if len(b.Capabilities) > 0 {
		out.Capabilities = make(map[string]CapabilitySettings, len(a.Capabilities))
		for k, v := range a.Capabilities {
			out.Capabilities[k] = v
		}
		for k, v := range b.Capabilities {
			base := out.Capabilities[k]
			if v.Endpoint != "" {
				base.Endpoint = v.Endpoint
			}
			if v.APIKey != "" {
				base.APIKey = v.APIKey
			}
			if v.TimeoutSeconds != 0 {
				base.TimeoutSeconds = v.TimeoutSeconds
			}
			out.Capabilities[k] = base
		}
	}
	return &out
}

func mergeJira(a, b JiraSettings) JiraSettings {
	if b.Site != "" {
		a.Site = b.Site
	}
	if b.Email != "" {
		a.Email = b.Email
	}
	if b.Token != "" {
		a.Token = b.Token
	}
	if b.ProjectKey != "" {
		a.ProjectKey = b.ProjectKey
	}
	return a
}

func mergeConfluence(a, b ConfluenceSettings) ConfluenceSettings {
	if b.Site != "" {
		a.Site = b.Site
	}
	if b.Email != "" {
		a.Email = b.Email
	}
	if b.Token != "" {
		a.Token = b.Token
	}
	if b.SpaceKey != "" {
		a.SpaceKey = b.SpaceKey
	}
	return a
}
