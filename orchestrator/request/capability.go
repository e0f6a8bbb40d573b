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

// Package request defines the request capabilities the orchestrator accepts
// and validates incoming payloads against per-capability rules before any
// provider is resolved.
package request

// Capability identifies one of the workflow kinds the orchestrator can
// dispatch. The set is closed: code that branches on a Capability switches
// exhaustively over the constants below.
type Capability string

const (
	// CapabilityClaimValidation validates an insurance claim against
	// NPHIES submission rules.
	CapabilityClaimValidation Capability = "claim_validation"

	// CapabilityClinicalDecision runs a clinical decision support workflow
	// for a patient resource.
	CapabilityClinicalDecision Capability = "clinical_decision_support"

	// CapabilityKnowledgeRetrieval queries a knowledge corpus and returns
	// scored passages.
	CapabilityKnowledgeRetrieval Capability = "knowledge_retrieval"

	// CapabilityTranscriptProcessing turns a clinical transcript into a
	// structured document (summary, SBAR, SOAP, or billing codes).
	CapabilityTranscriptProcessing Capability = "transcript_processing"

	// CapabilityAssistantIntent executes a named assistant intent with
	// free-form arguments.
	CapabilityAssistantIntent Capability = "assistant_intent"
)

// AllCapabilities returns every dispatchable capability in a stable order.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityClaimValidation,
		CapabilityClinicalDecision,
		CapabilityKnowledgeRetrieval,
		CapabilityTranscriptProcessing,
		CapabilityAssistantIntent,
	}
}

// Valid reports whether c is one of the known capabilities.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityClaimValidation,
		CapabilityClinicalDecision,
		CapabilityKnowledgeRetrieval,
		CapabilityTranscriptProcessing,
		CapabilityAssistantIntent:
		return true
	}
	return false
}

// String returns the wire name of the capability.
func (c Capability) String() string {
	return string(c)
}
