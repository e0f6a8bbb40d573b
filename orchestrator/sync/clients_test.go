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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainsait/platform/orchestrator/config"
)

func TestJiraClientSubmit(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue", r.URL.Path)

		user, token, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "ops@brainsait.com", user)
		assert.Equal(t, "api-token", token)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"key": "CARE-42"})
	}))
	defer server.Close()

	client := NewJiraClient(config.JiraSettings{
		Site: server.URL, Email: "ops@brainsait.com", Token: "api-token", ProjectKey: "CARE",
	})

	key, err := client.Submit(context.Background(), Job{
		Target: TargetJira, OperationID: "op-1",
		Title: "Claim claim-001 approved", Body: "verdict: approved",
	})
	require.NoError(t, err)
	assert.Equal(t, "CARE-42", key)

	fields := got["fields"].(map[string]interface{})
	assert.Equal(t, "Claim claim-001 approved", fields["summary"])
	assert.Equal(t, "CARE", fields["project"].(map[string]interface{})["key"])
	// Description must be an ADF document, not a plain string.
	description := fields["description"].(map[string]interface{})
	assert.Equal(t, "doc", description["type"])
}

func TestJiraClientErrorSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"errorMessages":["no permission"]}`))
	}))
	defer server.Close()

	client := NewJiraClient(config.JiraSettings{Site: server.URL, ProjectKey: "CARE"})
	_, err := client.Submit(context.Background(), Job{Target: TargetJira, Title: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestConfluenceClientSubmit(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wiki/rest/api/content", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"id": "98765"})
	}))
	defer server.Close()

	client := NewConfluenceClient(config.ConfluenceSettings{
		Site: server.URL + "/wiki", Email: "ops@brainsait.com", Token: "t", SpaceKey: "CARE",
	})

	id, err := client.Submit(context.Background(), Job{
		Target: TargetConfluence, Title: "Operation op-1", Body: "result <summary>",
	})
	require.NoError(t, err)
	assert.Equal(t, "98765", id)

	assert.Equal(t, "page", got["type"])
	assert.Equal(t, "CARE", got["space"].(map[string]interface{})["key"])
	storage := got["body"].(map[string]interface{})["storage"].(map[string]interface{})
	assert.Equal(t, "storage", storage["representation"])
	// Body text is HTML-escaped into the storage value.
	assert.Contains(t, storage["value"], "&lt;summary&gt;")
}

func TestConfluenceSiteNormalization(t *testing.T) {
	client := NewConfluenceClient(config.ConfluenceSettings{Site: "https://brainsait.atlassian.net"})
	assert.Equal(t, "https://brainsait.atlassian.net/wiki", client.site)

	client = NewConfluenceClient(config.ConfluenceSettings{Site: "https://brainsait.atlassian.net/wiki/"})
	assert.Equal(t, "https://brainsait.atlassian.net/wiki", client.site)
}
