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

// transcriptProvider turns clinical transcripts into structured documents
// via an ambient scribe backend.
type transcriptProvider struct {
	http *httpClient
}

func newTranscriptProvider(cfg config.CapabilityConfig) Provider {
	return &transcriptProvider{http: newHTTPClient("ambient-scribe", cfg)}
}

func (p *transcriptProvider) Name() string {
	return p.http.name
}

func (p *transcriptProvider) Kind() request.Capability {
	return request.CapabilityTranscriptProcessing
}

func (p *transcriptProvider) Invoke(ctx context.Context, req *request.ValidatedRequest) (*Result, error) {
	if req == nil || req.Transcript == nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeInvalidRequest,
			Message:  "missing transcript payload",
		}
	}

	var doc TranscriptDocument
	if err := p.http.postJSON(ctx, "/transcripts/process", req.Transcript, &doc); err != nil {
		return nil, err
	}
	if doc.Task == "" {
		doc.Task = req.Transcript.Task
	}
	if doc.Content == "" {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeBadResponse,
			Message:  "document missing content",
		}
	}

	return &Result{
		Provider: p.Name(),
		Summary:  fmt.Sprintf("%s document generated (%d chars)", doc.Task, len(doc.Content)),
		Document: &doc,
	}, nil
}
