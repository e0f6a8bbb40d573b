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

package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"brainsait/platform/orchestrator/config"
)

// ConfluenceClient creates pages in Confluence Cloud using the storage
// representation.
type ConfluenceClient struct {
	site     string
	email    string
	token    string
	spaceKey string
	client   *http.Client
}

// NewConfluenceClient builds a client from resolved sync settings. The site
// URL is normalized to end in /wiki, which Confluence Cloud requires.
func NewConfluenceClient(settings config.ConfluenceSettings) *ConfluenceClient {
	site := strings.TrimRight(settings.Site, "/")
	if !strings.HasSuffix(site, "/wiki") {
		site += "/wiki"
	}
	return &ConfluenceClient{
		site:     site,
		email:    settings.Email,
		token:    settings.Token,
		spaceKey: settings.SpaceKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit creates one page and returns its content ID.
func (c *ConfluenceClient) Submit(ctx context.Context, job Job) (string, error) {
	payload := map[string]interface{}{
		"type":  "page",
		"title": job.Title,
		"space": map[string]string{"key": c.spaceKey},
		"body": map[string]interface{}{
			"storage": map[string]string{
				"value":          "<p>" + html.EscapeString(job.Body) + "</p>",
				"representation": "storage",
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.site+"/rest/api/content", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to build page request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("confluence request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("confluence returned status %d: %s", resp.StatusCode, truncate(string(body), syncBodyLimit))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode page response: %w", err)
	}
	return created.ID, nil
}
