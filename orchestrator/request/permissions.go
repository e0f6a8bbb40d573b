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

import "strings"

// Roles recognized by the permission model.
const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RoleNurse    = "nurse"
	RoleAuditor  = "auditor"
)

// rolePermissions maps each role to its permission grants. A grant of "*"
// allows everything; a grant ending in ":*" allows every action in that
// namespace.
var rolePermissions = map[string][]string{
	RoleAdmin:    {"*"},
	RoleProvider: {"claims:*", "patients:read", "clinical:*", "knowledge:*", "assistant:*"},
	RoleNurse:    {"patients:read", "clinical:read", "clinical:transcribe", "knowledge:query"},
	RoleAuditor:  {"audit:read", "compliance:read"},
}

// capabilityActions maps each capability to the permission its dispatch
// requires.
var capabilityActions = map[Capability]string{
	CapabilityClaimValidation:      "claims:process",
	CapabilityClinicalDecision:     "clinical:run",
	CapabilityKnowledgeRetrieval:   "knowledge:query",
	CapabilityTranscriptProcessing: "clinical:transcribe",
	CapabilityAssistantIntent:      "assistant:execute",
}

// KnownRole reports whether role is one of the recognized roles.
func KnownRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// HasPermission reports whether role holds the given action, honoring
// wildcard grants.
func HasPermission(role, action string) bool {
	grants, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, grant := range grants {
		if grant == "*" || grant == action {
			return true
		}
		if strings.HasSuffix(grant, ":*") &&
			strings.HasPrefix(action, strings.TrimSuffix(grant, "*")) {
			return true
		}
	}
	return false
}

// RoleAllowed reports whether role may dispatch the given capability.
func RoleAllowed(role string, kind Capability) bool {
	action, ok := capabilityActions[kind]
	if !ok {
		return false
	}
	return HasPermission(role, action)
}
