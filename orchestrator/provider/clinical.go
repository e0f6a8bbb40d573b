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
	"context"
	"fmt"

	"brainsait/platform/orchestrator/config"
	"brainsait/platform/orchestrator/request"
)

// clinicalProvider runs decision support workflows against a CDS backend.
// The request carries the patient's preferred language so bilingual
// deployments get guidance in the right language.
type clinicalProvider struct {
	http *httpClient
}

func newClinicalProvider(cfg config.CapabilityConfig) Provider {
	return &clinicalProvider{http: newHTTPClient("clinical-cds", cfg)}
}

func (p *clinicalProvider) Name() string {
	return p.http.name
}

func (p *clinicalProvider) Kind() request.Capability {
	return request.CapabilityClinicalDecision
}

type clinicalInvocation struct {
	WorkflowType string                   `json:"workflowType"`
	Patient      *request.PatientResource `json:"patient"`
	Language     string                   `json:"language"`
	Bilingual    bool                     `json:"bilingual"`
}

func (p *clinicalProvider) Invoke(ctx context.Context, req *request.ValidatedRequest) (*Result, error) {
	if req == nil || req.Clinical == nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeInvalidRequest,
			Message:  "missing clinical payload",
		}
	}

	body := clinicalInvocation{
		WorkflowType: req.Clinical.WorkflowType,
		Patient:      req.Clinical.Patient,
		Language:     req.Clinical.PreferredLanguage(),
		Bilingual:    req.Clinical.Bilingual,
	}

	var advice ClinicalAdvice
	if err := p.http.postJSON(ctx, "/workflows/clinical", body, &advice); err != nil {
		return nil, err
	}
	if advice.Language == "" {
		advice.Language = body.Language
	}

	return &Result{
		Provider: p.Name(),
		Summary: fmt.Sprintf("%s guidance for patient %s (%d recommendations)",
			req.Clinical.WorkflowType, req.Clinical.Patient.ID, len(advice.Recommendations)),
		Advice: &advice,
	}, nil
}
