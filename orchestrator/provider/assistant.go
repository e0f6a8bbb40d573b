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

// assistantProvider forwards named intents to the assistant backend. The
// result payload shape is owned by the backend and passed through opaque.
type assistantProvider struct {
	http *httpClient
}

func newAssistantProvider(cfg config.CapabilityConfig) Provider {
	return &assistantProvider{http: newHTTPClient("assistant-intents", cfg)}
}

func (p *assistantProvider) Name() string {
	return p.http.name
}

func (p *assistantProvider) Kind() request.Capability {
	return request.CapabilityAssistantIntent
}

type intentResponse struct {
	Result map[string]interface{} `json:"result"`
}

func (p *assistantProvider) Invoke(ctx context.Context, req *request.ValidatedRequest) (*Result, error) {
	if req == nil || req.Intent == nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeInvalidRequest,
			Message:  "missing intent payload",
		}
	}

	var resp intentResponse
	if err := p.http.postJSON(ctx, "/intents/execute", req.Intent, &resp); err != nil {
		return nil, err
	}

	return &Result{
		Provider: p.Name(),
		Summary:  fmt.Sprintf("intent %q executed", req.Intent.Intent),
		Payload:  resp.Result,
	}, nil
}
