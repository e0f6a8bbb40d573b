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
	"sort"

	"brainsait/platform/orchestrator/config"
	"brainsait/platform/orchestrator/request"
)

// retrievalProvider queries a RAG-style knowledge endpoint. Passages are
// returned in descending relevance order and capped at the requested top-k
// even when the backend over-delivers.
type retrievalProvider struct {
	http *httpClient
}

func newRetrievalProvider(cfg config.CapabilityConfig) Provider {
	return &retrievalProvider{http: newHTTPClient("knowledge-rag", cfg)}
}

func (p *retrievalProvider) Name() string {
	return p.http.name
}

func (p *retrievalProvider) Kind() request.Capability {
	return request.CapabilityKnowledgeRetrieval
}

type retrievalResponse struct {
	Passages []Passage `json:"passages"`
}

func (p *retrievalProvider) Invoke(ctx context.Context, req *request.ValidatedRequest) (*Result, error) {
	if req == nil || req.Retrieval == nil {
		return nil, &ProviderError{
			Provider: p.Name(),
			Code:     ErrCodeInvalidRequest,
			Message:  "missing retrieval payload",
		}
	}

	var resp retrievalResponse
	if err := p.http.postJSON(ctx, "/retrieval/query", req.Retrieval, &resp); err != nil {
		return nil, err
	}

	passages := resp.Passages
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > req.Retrieval.TopK {
		passages = passages[:req.Retrieval.TopK]
	}

	return &Result{
		Provider: p.Name(),
		Summary:  fmt.Sprintf("%d passages for query %q", len(passages), truncate(req.Retrieval.Query, 80)),
		Passages: passages,
	}, nil
}
