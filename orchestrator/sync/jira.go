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
	"io"
	"net/http"
	"strings"
	"time"

	"brainsait/platform/orchestrator/config"
)

const syncBodyLimit = 200

// JiraClient creates issues in Jira Cloud via the v3 REST API with basic
// auth (email + API token).
type JiraClient struct {
	site       string
	email      string
	token      string
	projectKey string
	client     *http.Client
}

// NewJiraClient builds a client from resolved sync settings.
func NewJiraClient(settings config.JiraSettings) *JiraClient {
	return &JiraClient{
		site:       strings.TrimRight(settings.Site, "/"),
		email:      settings.Email,
		token:      settings.Token,
		projectKey: settings.ProjectKey,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// adfDocument wraps plain text in the Atlassian Document Format the v3
// issue API requires for descriptions.
func adfDocument(text string) map[string]interface{} {
	return map[string]interface{}{
		"type":    "doc",
		"version": 1,
		"content": []map[string]interface{}{
			{
				"type": "paragraph",
				"content": []map[string]interface{}{
					{"type": "text", "text": text},
				},
			},
		},
	}
}

// Submit creates one issue and returns its key.
func (c *JiraClient) Submit(ctx context.Context, job Job) (string, error) {
	payload := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":     map[string]string{"key": c.projectKey},
			"summary":     job.Title,
			"issuetype":   map[string]string{"name": "Task"},
			"description": adfDocument(job.Body),
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode issue: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.site+"/rest/api/3/issue", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to build issue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("jira request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("jira returned status %d: %s", resp.StatusCode, truncate(string(body), syncBodyLimit))
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode issue response: %w", err)
	}
	return created.Key, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
