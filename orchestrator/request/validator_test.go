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

package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClaimPayload() map[string]interface{} {
	return map[string]interface{}{
		"resourceType": "Claim",
		"id":           "claim-001",
		"status":       "active",
		"type": map[string]interface{}{
			"coding": []map[string]interface{}{
				{"system": "http://terminology.hl7.org/CodeSystem/claim-type", "code": "institutional"},
			},
		},
		"patient":  map[string]interface{}{"reference": "Patient/patient-001"},
		"provider": map[string]interface{}{"reference": "Organization/provider-001"},
		"insurance": []map[string]interface{}{
			{"sequence": 1, "focal": true, "coverage": map[string]interface{}{"reference": "Coverage/coverage-001"}},
		},
	}
}

func marshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestValidateUnknownCapability(t *testing.T) {
	_, err := Validate(Capability("billing"), json.RawMessage(`{}`))
	require.Error(t, err)

	var unknownErr *UnknownCapabilityError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "billing", unknownErr.Kind)
}

func TestValidateClaim(t *testing.T) {
	t.Run("valid claim passes", func(t *testing.T) {
		vr, err := Validate(CapabilityClaimValidation, marshal(t, validClaimPayload()))
		require.NoError(t, err)
		require.NotNil(t, vr.Claim)
		assert.Equal(t, CapabilityClaimValidation, vr.Kind)
		assert.Equal(t, "claim-001", vr.Claim.ID)
	})

	t.Run("missing patient reference names the patient field", func(t *testing.T) {
		payload := validClaimPayload()
		delete(payload, "patient")

		_, err := Validate(CapabilityClaimValidation, marshal(t, payload))
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "patient", verr.Field)
	})

	t.Run("wrong resource type rejected", func(t *testing.T) {
		payload := validClaimPayload()
		payload["resourceType"] = "Encounter"

		_, err := Validate(CapabilityClaimValidation, marshal(t, payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "resourceType", verr.Field)
	})

	t.Run("empty insurance rejected", func(t *testing.T) {
		payload := validClaimPayload()
		payload["insurance"] = []map[string]interface{}{}

		_, err := Validate(CapabilityClaimValidation, marshal(t, payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "insurance", verr.Field)
	})

	t.Run("insurance entry without coverage rejected", func(t *testing.T) {
		payload := validClaimPayload()
		payload["insurance"] = []map[string]interface{}{{"sequence": 1, "focal": true}}

		_, err := Validate(CapabilityClaimValidation, marshal(t, payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "insurance[0].coverage", verr.Field)
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		_, err := Validate(CapabilityClaimValidation, json.RawMessage(`{not json`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "payload", verr.Field)
	})

	t.Run("national ID checksum", func(t *testing.T) {
		cases := []struct {
			name  string
			id    string
			valid bool
		}{
			{"valid citizen ID", "1000000008", true},
			{"bad checksum", "1234567890", false},
			{"wrong leading digit", "3000000008", false},
			{"too short", "10008", false},
			{"non-numeric", "10000000ax", false},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				payload := validClaimPayload()
				payload["nationalId"] = tc.id

				_, err := Validate(CapabilityClaimValidation, marshal(t, payload))
				if tc.valid {
					assert.NoError(t, err)
				} else {
					var verr *ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, "nationalId", verr.Field)
				}
			})
		}
	})
}

func TestValidateClinical(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"workflowType": "diagnosis",
			"patient": map[string]interface{}{
				"resourceType": "Patient",
				"id":           "patient-001",
			},
		}
	}

	t.Run("valid workflow passes", func(t *testing.T) {
		vr, err := Validate(CapabilityClinicalDecision, marshal(t, base()))
		require.NoError(t, err)
		require.NotNil(t, vr.Clinical)
		assert.Equal(t, "diagnosis", vr.Clinical.WorkflowType)
	})

	t.Run("unknown workflow type rejected", func(t *testing.T) {
		payload := base()
		payload["workflowType"] = "surgery"

		_, err := Validate(CapabilityClinicalDecision, marshal(t, payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "workflowType", verr.Field)
	})

	t.Run("missing patient rejected", func(t *testing.T) {
		payload := base()
		delete(payload, "patient")

		_, err := Validate(CapabilityClinicalDecision, marshal(t, payload))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "patient", verr.Field)
	})

	t.Run("preferred language detection", func(t *testing.T) {
		payload := base()
		payload["patient"] = map[string]interface{}{
			"resourceType": "Patient",
			"id":           "patient-001",
			"communication": []map[string]interface{}{
				{
					"language":  map[string]interface{}{"coding": []map[string]interface{}{{"code": "en"}}},
					"preferred": false,
				},
				{
					"language":  map[string]interface{}{"coding": []map[string]interface{}{{"code": "ar-SA"}}},
					"preferred": true,
				},
			},
		}

		vr, err := Validate(CapabilityClinicalDecision, marshal(t, payload))
		require.NoError(t, err)
		assert.Equal(t, "ar", vr.Clinical.PreferredLanguage())
	})

	t.Run("language defaults to english", func(t *testing.T) {
		vr, err := Validate(CapabilityClinicalDecision, marshal(t, base()))
		require.NoError(t, err)
		assert.Equal(t, "en", vr.Clinical.PreferredLanguage())
	})
}

func TestValidateRetrieval(t *testing.T) {
	t.Run("valid query passes", func(t *testing.T) {
		vr, err := Validate(CapabilityKnowledgeRetrieval,
			json.RawMessage(`{"query":"sepsis protocol","corpus":"guidelines","topK":5}`))
		require.NoError(t, err)
		require.NotNil(t, vr.Retrieval)
		assert.Equal(t, 5, vr.Retrieval.TopK)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := Validate(CapabilityKnowledgeRetrieval, json.RawMessage(`{"query":"  ","topK":5}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "query", verr.Field)
	})

	t.Run("top-k bounds enforced", func(t *testing.T) {
		for _, topK := range []int{0, -1, 51} {
			_, err := Validate(CapabilityKnowledgeRetrieval,
				marshal(t, map[string]interface{}{"query": "q", "topK": topK}))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "topK", verr.Field)
		}
	})
}

func TestValidateTranscript(t *testing.T) {
	t.Run("each task accepted", func(t *testing.T) {
		for _, task := range []string{TaskSummarize, TaskSBAR, TaskSOAP, TaskCodify} {
			vr, err := Validate(CapabilityTranscriptProcessing,
				marshal(t, map[string]interface{}{"transcript": "patient presents with", "task": task}))
			require.NoError(t, err)
			assert.Equal(t, task, vr.Transcript.Task)
		}
	})

	t.Run("unknown task rejected", func(t *testing.T) {
		_, err := Validate(CapabilityTranscriptProcessing,
			json.RawMessage(`{"transcript":"note","task":"translate"}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "task", verr.Field)
	})

	t.Run("empty transcript rejected", func(t *testing.T) {
		_, err := Validate(CapabilityTranscriptProcessing,
			json.RawMessage(`{"transcript":"","task":"soap"}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "transcript", verr.Field)
	})
}

func TestValidateIntent(t *testing.T) {
	t.Run("valid intent passes", func(t *testing.T) {
		vr, err := Validate(CapabilityAssistantIntent,
			json.RawMessage(`{"intent":"triage_patient","arguments":{"priority":"high"}}`))
		require.NoError(t, err)
		require.NotNil(t, vr.Intent)
		assert.Equal(t, "triage_patient", vr.Intent.Intent)
	})

	t.Run("arguments default to empty map", func(t *testing.T) {
		vr, err := Validate(CapabilityAssistantIntent, json.RawMessage(`{"intent":"ping"}`))
		require.NoError(t, err)
		assert.NotNil(t, vr.Intent.Arguments)
	})

	t.Run("empty intent rejected", func(t *testing.T) {
		_, err := Validate(CapabilityAssistantIntent, json.RawMessage(`{"intent":""}`))
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "intent", verr.Field)
	})
}
