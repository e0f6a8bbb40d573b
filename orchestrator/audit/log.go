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

// Package audit keeps the operation history: a bounded in-memory log that
// every dispatch appends exactly one record to, with an optional PostgreSQL
// mirror for durable storage.
package audit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"brainsait/platform/orchestrator/request"
)

// Outcome is the terminal classification of a dispatch.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeProviderError   Outcome = "provider_error"
	OutcomeValidationError Outcome = "validation_error"
	OutcomeTimeout         Outcome = "timeout"
	OutcomeUnavailable     Outcome = "unavailable"
)

// Record is one completed dispatch. Records are immutable once appended;
// the log stores and returns them by value.
type Record struct {
	ID          string              `json:"id"`
	Kind        request.Capability  `json:"capability"`
	Outcome     Outcome             `json:"outcome"`
	Role        string              `json:"role,omitempty"`
	Provider    string              `json:"provider,omitempty"`
	Detail      string              `json:"detail"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
	Duration    time.Duration       `json:"duration"`
}

// DefaultCapacity bounds the log when no capacity is configured.
const DefaultCapacity = 1000

// Log is a fixed-capacity operation log. When full, the oldest record is
// evicted first. All methods are safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	capacity int
	records  []Record
}

// NewLog creates a log holding at most capacity records. Non-positive
// capacities fall back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		records:  make([]Record, 0, capacity),
	}
}

// Append adds a record, evicting the oldest when the log is full.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) == l.capacity {
		copy(l.records, l.records[1:])
		l.records[len(l.records)-1] = r
		return
	}
	l.records = append(l.records, r)
}

// Recent returns up to n of the newest records in insertion order (oldest
// of the returned window first). n <= 0 returns everything retained.
func (l *Log) Recent(n int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Record, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

// Len returns the number of retained records.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Capacity returns the maximum number of retained records.
func (l *Log) Capacity() int {
	return l.capacity
}

// Export renders the retained records as flat text, one line per record,
// oldest first. The format is stable for operational tooling:
//
//	[<RFC3339 completion time>] capability=<kind> outcome=<outcome> duration_ms=<int> detail=<detail>
func (l *Log) Export() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var b strings.Builder
	for _, r := range l.records {
		fmt.Fprintf(&b, "[%s] capability=%s outcome=%s duration_ms=%d detail=%s\n",
			r.CompletedAt.UTC().Format(time.RFC3339),
			r.Kind, r.Outcome, r.Duration.Milliseconds(), r.Detail)
	}
	return b.String()
}
