// Copyright 2025 BrainSAIT
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Command orchestrator runs the BrainSAIT healthcare orchestration service.

The orchestrator validates clinical and administrative requests, routes
them to configured backend providers, records every operation in a bounded
audit log, and mirrors results to Jira and Confluence on request.

# Usage

	orchestrator

# Environment Variables

Optional:
  - BRAINSAIT_MODE: capability mode, simple or advanced (default: simple)
  - BRAINSAIT_SETTINGS_FILE: YAML settings file (default: settings.yaml)
  - BRAINSAIT_LISTEN_ADDR: HTTP listen address (default: :8084)
  - BRAINSAIT_AUDIT_CAPACITY: audit log capacity (default: 1000)
  - BRAINSAIT_RATE_LIMIT_PER_MINUTE: per-role dispatch limit (0 disables)
  - DATABASE_URL: PostgreSQL audit mirror
  - REDIS_URL: Redis backend for the rate limiter

# Capability Backends

Each capability needs an endpoint and an API key. The generic form is
BRAINSAIT_<CAPABILITY>_ENDPOINT / BRAINSAIT_<CAPABILITY>_API_KEY; legacy
names are accepted as fallbacks:

	# Claim validation (NPHIES)
	export NPHIES_ENDPOINT="https://nphies.sa/api"
	export NPHIES_ACCESS_TOKEN="..."

	# Clinical decision support
	export FHIR_BASE_URL="https://cds.example.com"
	export CLAUDE_API_KEY="..."

	# Knowledge retrieval, transcripts, assistant intents
	export NVIDIA_RAG_ENDPOINT="https://rag.example.com"
	export NVIDIA_AMBIENT_ENDPOINT="https://scribe.example.com"
	export NVIDIA_AVA_ENDPOINT="https://ava.example.com"
	export NVIDIA_API_KEY="..."

# Example

	export BRAINSAIT_MODE="advanced"
	export NPHIES_ENDPOINT="https://nphies.sa/api"
	export NPHIES_ACCESS_TOKEN="..."
	./orchestrator
*/
package main
