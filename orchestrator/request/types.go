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

import "fmt"

// ValidationError indicates a payload that failed a validation rule.
// Field names the offending field and Constraint describes the rule in
// human-readable form. Callers can fix the payload and resubmit.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Constraint)
}

// UnknownCapabilityError indicates a dispatch request for a capability
// outside the closed set.
type UnknownCapabilityError struct {
	Kind string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability %q", e.Kind)
}

// Reference is a FHIR-style reference to another resource.
type Reference struct {
	Reference string `json:"reference"`
}

// Coding is a single code from a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept is a FHIR-style coded value with optional free text.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// InsuranceEntry is one coverage line on a claim.
type InsuranceEntry struct {
	Sequence int        `json:"sequence"`
	Focal    bool       `json:"focal"`
	Coverage *Reference `json:"coverage"`
}

// ClaimRequest is the payload for claim validation. Field names follow the
// FHIR Claim resource so payloads can be forwarded to NPHIES-shaped
// endpoints unchanged.
type ClaimRequest struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Type         *CodeableConcept `json:"type"`
	Patient      *Reference       `json:"patient"`
	Provider     *Reference       `json:"provider"`
	Insurance    []InsuranceEntry `json:"insurance"`

	// NationalID is the beneficiary's Saudi national ID. Optional; when
	// present it must pass the national ID checksum.
	NationalID string `json:"nationalId,omitempty"`
}

// Communication is a FHIR Patient.communication entry used for language
// preference detection.
type Communication struct {
	Language  *CodeableConcept `json:"language"`
	Preferred bool             `json:"preferred"`
}

// PatientResource is the subset of the FHIR Patient resource the clinical
// workflows need.
type PatientResource struct {
	ResourceType  string          `json:"resourceType"`
	ID            string          `json:"id"`
	Communication []Communication `json:"communication,omitempty"`
}

// Clinical workflow types.
const (
	WorkflowDiagnosis  = "diagnosis"
	WorkflowTreatment  = "treatment"
	WorkflowRadiology  = "radiology"
	WorkflowLaboratory = "laboratory"
)

// ClinicalRequest is the payload for a clinical decision support workflow.
type ClinicalRequest struct {
	WorkflowType string           `json:"workflowType"`
	Patient      *PatientResource `json:"patient"`
	Bilingual    bool             `json:"bilingual,omitempty"`
}

// PreferredLanguage inspects the patient's communication block and returns
// "ar" when an Arabic entry is marked preferred (or is the only entry),
// defaulting to "en".
func (r *ClinicalRequest) PreferredLanguage() string {
	if r.Patient == nil {
		return "en"
	}
	fallback := ""
	for _, comm := range r.Patient.Communication {
		if comm.Language == nil {
			continue
		}
		for _, coding := range comm.Language.Coding {
			lang := normalizeLanguage(coding.Code)
			if lang == "" {
				continue
			}
			if comm.Preferred {
				return lang
			}
			if fallback == "" {
				fallback = lang
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

func normalizeLanguage(code string) string {
	switch {
	case code == "ar" || (len(code) > 2 && code[:3] == "ar-"):
		return "ar"
	case code == "en" || (len(code) > 2 && code[:3] == "en-"):
		return "en"
	}
	return ""
}

// RetrievalRequest is the payload for knowledge retrieval.
type RetrievalRequest struct {
	Query  string `json:"query"`
	Corpus string `json:"corpus,omitempty"`
	TopK   int    `json:"topK"`
}

// Transcript processing tasks.
const (
	TaskSummarize = "summarize"
	TaskSBAR      = "sbar"
	TaskSOAP      = "soap"
	TaskCodify    = "codify"
)

// TranscriptRequest is the payload for transcript processing.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
	Task       string `json:"task"`
}

// IntentRequest is the payload for assistant intent execution.
type IntentRequest struct {
	Intent    string                 `json:"intent"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ValidatedRequest is the normalized output of Validate. Exactly one of the
// capability-specific fields is non-nil, matching Kind.
type ValidatedRequest struct {
	Kind       Capability
	Claim      *ClaimRequest
	Clinical   *ClinicalRequest
	Retrieval  *RetrievalRequest
	Transcript *TranscriptRequest
	Intent     *IntentRequest
}
