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

package request

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Retrieval top-k bounds.
const (
	MinTopK = 1
	MaxTopK = 50
)

// Validate checks payload against the rules for kind and returns the
// normalized request. Validation is fail-fast: the first violated rule is
// returned as a *ValidationError. An unrecognized kind returns a
// *UnknownCapabilityError. Validate performs no I/O.
func Validate(kind Capability, payload json.RawMessage) (*ValidatedRequest, error) {
	if !kind.Valid() {
		return nil, &UnknownCapabilityError{Kind: string(kind)}
	}

	switch kind {
	case CapabilityClaimValidation:
		return validateClaim(payload)
	case CapabilityClinicalDecision:
		return validateClinical(payload)
	case CapabilityKnowledgeRetrieval:
		return validateRetrieval(payload)
	case CapabilityTranscriptProcessing:
		return validateTranscript(payload)
	case CapabilityAssistantIntent:
		return validateIntent(payload)
	}

	// Unreachable: Valid() covers the full enum.
	return nil, &UnknownCapabilityError{Kind: string(kind)}
}

func decode(payload json.RawMessage, into interface{}) *ValidationError {
	if len(payload) == 0 {
		return &ValidationError{Field: "payload", Constraint: "must be a JSON object"}
	}
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	if err := dec.Decode(into); err != nil {
		return &ValidationError{Field: "payload", Constraint: fmt.Sprintf("must be valid JSON: %v", err)}
	}
	return nil
}

func validateClaim(payload json.RawMessage) (*ValidatedRequest, error) {
	var claim ClaimRequest
	if verr := decode(payload, &claim); verr != nil {
		return nil, verr
	}
	if claim.ResourceType != "Claim" {
		return nil, &ValidationError{Field: "resourceType", Constraint: `must be "Claim"`}
	}
	if claim.ID == "" {
		return nil, &ValidationError{Field: "id", Constraint: "must not be empty"}
	}
	if claim.Status == "" {
		return nil, &ValidationError{Field: "status", Constraint: "must not be empty"}
	}
	if claim.Type == nil || (len(claim.Type.Coding) == 0 && claim.Type.Text == "") {
		return nil, &ValidationError{Field: "type", Constraint: "must carry a coding or text"}
	}
	if claim.Patient == nil || claim.Patient.Reference == "" {
		return nil, &ValidationError{Field: "patient", Constraint: "must reference a patient resource"}
	}
	if claim.Provider == nil || claim.Provider.Reference == "" {
		return nil, &ValidationError{Field: "provider", Constraint: "must reference a provider organization"}
	}
	if len(claim.Insurance) == 0 {
		return nil, &ValidationError{Field: "insurance", Constraint: "must contain at least one coverage entry"}
	}
	for i, entry := range claim.Insurance {
		if entry.Coverage == nil || entry.Coverage.Reference == "" {
			return nil, &ValidationError{
				Field:      fmt.Sprintf("insurance[%d].coverage", i),
				Constraint: "must reference a coverage resource",
			}
		}
	}
	if claim.NationalID != "" && !validNationalID(claim.NationalID) {
		return nil, &ValidationError{
			Field:      "nationalId",
			Constraint: "must be a 10-digit Saudi national ID starting with 1 or 2 with a valid checksum",
		}
	}
	return &ValidatedRequest{Kind: CapabilityClaimValidation, Claim: &claim}, nil
}

func validateClinical(payload json.RawMessage) (*ValidatedRequest, error) {
	var clinical ClinicalRequest
	if verr := decode(payload, &clinical); verr != nil {
		return nil, verr
	}
	switch clinical.WorkflowType {
	case WorkflowDiagnosis, WorkflowTreatment, WorkflowRadiology, WorkflowLaboratory:
	default:
		return nil, &ValidationError{
			Field:      "workflowType",
			Constraint: "must be one of diagnosis, treatment, radiology, laboratory",
		}
	}
	if clinical.Patient == nil {
		return nil, &ValidationError{Field: "patient", Constraint: "must be present"}
	}
	if clinical.Patient.ResourceType != "Patient" {
		return nil, &ValidationError{Field: "patient.resourceType", Constraint: `must be "Patient"`}
	}
	if clinical.Patient.ID == "" {
		return nil, &ValidationError{Field: "patient.id", Constraint: "must not be empty"}
	}
	return &ValidatedRequest{Kind: CapabilityClinicalDecision, Clinical: &clinical}, nil
}

func validateRetrieval(payload json.RawMessage) (*ValidatedRequest, error) {
	var retrieval RetrievalRequest
	if verr := decode(payload, &retrieval); verr != nil {
		return nil, verr
	}
	if strings.TrimSpace(retrieval.Query) == "" {
		return nil, &ValidationError{Field: "query", Constraint: "must not be empty"}
	}
	if retrieval.TopK < MinTopK || retrieval.TopK > MaxTopK {
		return nil, &ValidationError{
			Field:      "topK",
			Constraint: fmt.Sprintf("must be between %d and %d", MinTopK, MaxTopK),
		}
	}
	return &ValidatedRequest{Kind: CapabilityKnowledgeRetrieval, Retrieval: &retrieval}, nil
}

func validateTranscript(payload json.RawMessage) (*ValidatedRequest, error) {
	var transcript TranscriptRequest
	if verr := decode(payload, &transcript); verr != nil {
		return nil, verr
	}
	if strings.TrimSpace(transcript.Transcript) == "" {
		return nil, &ValidationError{Field: "transcript", Constraint: "must not be empty"}
	}
	switch transcript.Task {
	case TaskSummarize, TaskSBAR, TaskSOAP, TaskCodify:
	default:
		return nil, &ValidationError{
			Field:      "task",
			Constraint: "must be one of summarize, sbar, soap, codify",
		}
	}
	return &ValidatedRequest{Kind: CapabilityTranscriptProcessing, Transcript: &transcript}, nil
}

func validateIntent(payload json.RawMessage) (*ValidatedRequest, error) {
	var intent IntentRequest
	if verr := decode(payload, &intent); verr != nil {
		return nil, verr
	}
	if strings.TrimSpace(intent.Intent) == "" {
		return nil, &ValidationError{Field: "intent", Constraint: "must not be empty"}
	}
	if intent.Arguments == nil {
		intent.Arguments = map[string]interface{}{}
	}
	return &ValidatedRequest{Kind: CapabilityAssistantIntent, Intent: &intent}, nil
}

// validNationalID checks the Saudi national ID format: 10 digits, leading
// digit 1 (citizen) or 2 (resident), Luhn checksum over all 10 digits.
func validNationalID(id string) bool {
	if len(id) != 10 {
		return false
	}
	if id[0] != '1' && id[0] != '2' {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
		d := int(id[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
