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

// Package provider maps capabilities to backend adapters. The registry
// performs pure resolution against a configuration snapshot; the adapters
// own the wire contracts of their backends.
package provider

import (
	"context"
	"fmt"

	"brainsait/platform/orchestrator/request"
)

// Provider executes one capability against a configured backend.
type Provider interface {
	// Name identifies the adapter in diagnostics and audit summaries.
	Name() string

	// Kind returns the capability this provider serves.
	Kind() request.Capability

	// Invoke executes the validated request. Cancellation and deadlines
	// arrive through ctx. Failures are *ProviderError values except for
	// context errors, which surface unwrapped causes.
	Invoke(ctx context.Context, req *request.ValidatedRequest) (*Result, error)
}

// Passage is one scored retrieval hit.
type Passage struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// LineItemIssue is one per-line diagnostic on a claim verdict.
type LineItemIssue struct {
	Sequence int    `json:"sequence"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// ClaimVerdict is the outcome of claim validation.
type ClaimVerdict struct {
	Outcome      string          `json:"outcome"`
	SubmissionID string          `json:"submissionId,omitempty"`
	Issues       []LineItemIssue `json:"issues,omitempty"`
}

// ClinicalAdvice is the output of a clinical decision support workflow.
type ClinicalAdvice struct {
	Recommendations  []string `json:"recommendations"`
	RiskFactors      []string `json:"riskFactors,omitempty"`
	SuggestedActions []string `json:"suggestedActions,omitempty"`
	Language         string   `json:"language,omitempty"`
}

// TranscriptDocument is the structured output of transcript processing.
type TranscriptDocument struct {
	Task    string `json:"task"`
	Content string `json:"content"`
}

// Result carries a provider's output. Summary is a short human-readable
// description; exactly one of the capability-specific fields is set,
// matching the provider's Kind.
type Result struct {
	Provider string                 `json:"provider"`
	Summary  string                 `json:"summary"`
	Verdict  *ClaimVerdict          `json:"verdict,omitempty"`
	Advice   *ClinicalAdvice        `json:"advice,omitempty"`
	Passages []Passage              `json:"passages,omitempty"`
	Document *TranscriptDocument    `json:"document,omitempty"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// Provider error codes.
const (
	ErrCodeRequestFailed  = "request_failed"
	ErrCodeHTTPError      = "http_error"
	ErrCodeBadResponse    = "bad_response"
	ErrCodeInvalidRequest = "invalid_request"
)

// ProviderError indicates a backend failure during invocation. Message is
// length-bounded; it never carries a full response body.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error [%s/%s]: %s (status %d)", e.Provider, e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("provider error [%s/%s]: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// UnavailableError indicates that a capability cannot be dispatched because
// the snapshot lacks its endpoint or credential, or the operating mode does
// not expose it.
type UnavailableError struct {
	Kind request.Capability
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("capability %q is not configured or not enabled", e.Kind)
}
