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
	"time"

	"brainsait/platform/orchestrator/request"
)

// Mode selects which capability set the deployment exposes.
type Mode string

const (
	// ModeSimple exposes the core capabilities: claim validation, clinical
	// decision support, and knowledge retrieval.
	ModeSimple Mode = "simple"

	// ModeAdvanced additionally exposes transcript processing and
	// assistant intent execution.
	ModeAdvanced Mode = "advanced"
)

// Built-in defaults.
const (
	DefaultListenAddr    = ":8084"
	DefaultAuditCapacity = 1000
	DefaultTimeout       = 30 * time.Second
)

// CapabilityConfig is the resolved configuration for one capability.
type CapabilityConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Snapshot is an immutable view of the resolved configuration. A dispatch
// captures one Snapshot and uses it for its whole lifetime, so concurrent
// configuration changes never affect an in-flight operation.
type Snapshot struct {
	Mode               Mode
	ListenAddr         string
	AuditCapacity      int
	RateLimitPerMinute int
	DatabaseURL        string
	RedisURL           string
	Jira               JiraSettings
	Confluence         ConfluenceSettings

	capabilities map[request.Capability]CapabilityConfig
}

// Resolve merges the given layers into a Snapshot. Later layers take
// precedence over earlier ones; built-in defaults sit below all layers.
// Resolve never fails: absent optional settings simply leave their
// capability unavailable.
func Resolve(layers ...*Settings) Snapshot {
	merged := &Settings{}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		merged = merge(merged, layer)
	}

	snap := Snapshot{
		Mode:               ModeSimple,
		ListenAddr:         DefaultListenAddr,
		AuditCapacity:      DefaultAuditCapacity,
		RateLimitPerMinute: merged.RateLimitPerMinute,
		DatabaseURL:        merged.DatabaseURL,
		RedisURL:           merged.RedisURL,
		Jira:               merged.Jira,
		Confluence:         merged.Confluence,
		capabilities:       make(map[request.Capability]CapabilityConfig),
	}
	if merged.Mode == string(ModeAdvanced) {
		snap.Mode = ModeAdvanced
	}
	if merged.ListenAddr != "" {
		snap.ListenAddr = merged.ListenAddr
	}
	if merged.AuditCapacity > 0 {
		snap.AuditCapacity = merged.AuditCapacity
	}

	for _, kind := range request.AllCapabilities() {
		raw, ok := merged.Capabilities[string(kind)]
		if !ok {
			continue
		}
		cfg := CapabilityConfig{
			Endpoint: raw.Endpoint,
			APIKey:   raw.APIKey,
			Timeout:  DefaultTimeout,
		}
		if raw.TimeoutSeconds > 0 {
			cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
		}
		snap.capabilities[kind] = cfg
	}

	return snap
}

// modeEnabled reports whether the operating mode exposes the capability.
func (s Snapshot) modeEnabled(kind request.Capability) bool {
	switch kind {
	case request.CapabilityTranscriptProcessing, request.CapabilityAssistantIntent:
		return s.Mode == ModeAdvanced
	}
	return true
}

// Capability returns the resolved configuration for kind. The second return
// is false when no source configured the capability.
func (s Snapshot) Capability(kind request.Capability) (CapabilityConfig, bool) {
	cfg, ok := s.capabilities[kind]
	return cfg, ok
}

// Available reports whether kind can be dispatched: the capability must
// have both an endpoint and a credential, and the operating mode must
// expose it.
func (s Snapshot) Available(kind request.Capability) bool {
	cfg, ok := s.capabilities[kind]
	if !ok {
		return false
	}
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return false
	}
	return s.modeEnabled(kind)
}

// AvailableCapabilities returns the capabilities Available reports true
// for, in the canonical order.
func (s Snapshot) AvailableCapabilities() []request.Capability {
	var out []request.Capability
	for _, kind := range request.AllCapabilities() {
		if s.Available(kind) {
			out = append(out, kind)
		}
	}
	return out
}

// TimeoutFor returns the per-capability timeout bound, falling back to the
// default when the capability is not configured.
func (s Snapshot) TimeoutFor(kind request.Capability) time.Duration {
	if cfg, ok := s.capabilities[kind]; ok && cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return DefaultTimeout
}
