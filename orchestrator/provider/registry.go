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

package provider

import (
	"sync"

	"brainsait/platform/orchestrator/config"
	"brainsait/platform/orchestrator/request"
)

// Registry resolves capabilities to provider adapters. Resolution is pure:
// it inspects the snapshot, never the network. Adapters are cached per
// endpoint so repeated resolutions reuse connection pools.
type Registry struct {
	mu    sync.RWMutex
	cache map[cacheKey]Provider
}

type cacheKey struct {
	kind     request.Capability
	endpoint string
	apiKey   string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cache: make(map[cacheKey]Provider)}
}

// Resolve returns the provider for kind under the given snapshot. An
// unknown kind returns *request.UnknownCapabilityError; a kind the
// snapshot does not make available returns *UnavailableError.
func (r *Registry) Resolve(kind request.Capability, snap config.Snapshot) (Provider, error) {
	if !kind.Valid() {
		return nil, &request.UnknownCapabilityError{Kind: string(kind)}
	}
	if !snap.Available(kind) {
		return nil, &UnavailableError{Kind: kind}
	}

	cfg, _ := snap.Capability(kind)
	key := cacheKey{kind: kind, endpoint: cfg.Endpoint, apiKey: cfg.APIKey}

	r.mu.RLock()
	p, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache[key]; ok {
		return p, nil
	}

	switch kind {
	case request.CapabilityClaimValidation:
		p = newClaimsProvider(cfg)
	case request.CapabilityClinicalDecision:
		p = newClinicalProvider(cfg)
	case request.CapabilityKnowledgeRetrieval:
		p = newRetrievalProvider(cfg)
	case request.CapabilityTranscriptProcessing:
		p = newTranscriptProvider(cfg)
	case request.CapabilityAssistantIntent:
		p = newAssistantProvider(cfg)
	default:
		return nil, &request.UnknownCapabilityError{Kind: string(kind)}
	}

	r.cache[key] = p
	return p, nil
}
