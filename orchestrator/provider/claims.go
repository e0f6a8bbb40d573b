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

// claimsProvider submits claims to an NPHIES-shaped validation endpoint.
type claimsProvider struct {
	http *httpClient
}

func newClaimsProvider(cfg config.CapabilityConfig) Provider {
	return &claimsProvider{http: newHTTPClient("nphies-claims", cfg)}
}

func (p *claimsProvider) Name() string {
	return p.http.name
}

func (p *claimsProvider) Kind() request.Capability {
	return request.CapabilityClaimValidation
}

func (p *claimsProvider) Invoke(ctx context.Context, req *request.ValidatedRequest) (*Result, error) {
	if req == nil || req.Claim == nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeInvalidRequest,
			Message:  "missing claim payload",
		}
	}

	var verdict ClaimVerdict
	if err := p.http.postJSON(ctx, "/claims/validate", req.Claim, &verdict); err != nil {
		return nil, err
	}

	if verdict.Outcome == "" {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeBadResponse,
			Message:  "verdict missing outcome",
		}
	}

	return &Result{
		Provider: p.Name(),
		Summary:  fmt.Sprintf("claim %s: %s (%d issues)", req.Claim.ID, verdict.Outcome, len(verdict.Issues)),
		Verdict:  &verdict,
	}, nil
}
