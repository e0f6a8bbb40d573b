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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"brainsait/platform/orchestrator/config"
)

const (
	// maxResponseBytes bounds how much of a backend response is read.
	maxResponseBytes = 1 << 20

	// errBodyLimit bounds how much of an error body lands in a message.
	errBodyLimit = 200
)

// sharedTransport is reused by every adapter so connections pool across
// dispatches.
var sharedTransport = &http.Transport{
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// httpClient is the shared invoker under every capability adapter. Requests
// carry bearer auth; deadlines come from the caller's context.
type httpClient struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

func newHTTPClient(name string, cfg config.CapabilityConfig) *httpClient {
	return &httpClient{
		name:    name,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Transport: sharedTransport},
	}
}

// postJSON sends body as JSON to path and decodes the response into out.
// Non-2xx responses become *ProviderError values with a truncated body
// sample. Context cancellation surfaces through the error chain so callers
// can distinguish timeouts with errors.Is.
func (c *httpClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &ProviderError{
			Provider: c.name,
			Code:     ErrCodeInvalidRequest,
			Message:  fmt.Sprintf("failed to encode request: %v", err),
			Cause:    err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return &ProviderError{
			Provider: c.name,
			Code:     ErrCodeInvalidRequest,
			Message:  fmt.Sprintf("failed to build request: %v", err),
			Cause:    err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return &ProviderError{
			Provider: c.name,
			Code:     ErrCodeRequestFailed,
			Message:  truncate(err.Error(), errBodyLimit),
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &ProviderError{
			Provider: c.name,
			Code:     ErrCodeBadResponse,
			Message:  fmt.Sprintf("failed to read response: %v", err),
			Cause:    err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Provider:   c.name,
			Code:       ErrCodeHTTPError,
			Message:    truncate(string(data), errBodyLimit),
			StatusCode: resp.StatusCode,
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ProviderError{
				Provider: c.name,
				Code:     ErrCodeBadResponse,
				Message:  fmt.Sprintf("failed to decode response: %v", err),
				Cause:    err,
			}
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
