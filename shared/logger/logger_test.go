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

package logger

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

func captureEntry(t *testing.T, emit func(*Logger)) LogEntry {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	emit(New("test-component"))

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	if jsonStart == -1 {
		t.Fatalf("no JSON found in log output: %s", output)
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(output[jsonStart:])), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\noutput: %s", err, output)
	}
	return entry
}

func TestNew(t *testing.T) {
	t.Run("with instance ID set", func(t *testing.T) {
		t.Setenv("INSTANCE_ID", "instance-123")
		logger := New("dispatcher")
		if logger.InstanceID != "instance-123" {
			t.Errorf("expected instance ID instance-123, got %s", logger.InstanceID)
		}
		if logger.Component != "dispatcher" {
			t.Errorf("expected component dispatcher, got %s", logger.Component)
		}
	})

	t.Run("without instance ID", func(t *testing.T) {
		t.Setenv("INSTANCE_ID", "")
		logger := New("dispatcher")
		if logger.InstanceID != "unknown" {
			t.Errorf("expected instance ID unknown, got %s", logger.InstanceID)
		}
		if logger.Container == "" {
			t.Error("expected container to be set from hostname")
		}
	})
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(*Logger, string, string, map[string]interface{})
		level   LogLevel
	}{
		{"Info log", (*Logger).Info, INFO},
		{"Error log", (*Logger).Error, ERROR},
		{"Warn log", (*Logger).Warn, WARN},
		{"Debug log", (*Logger).Debug, DEBUG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := captureEntry(t, func(l *Logger) {
				tt.logFunc(l, "req-456", "test message", map[string]interface{}{"key": "value"})
			})

			if entry.Level != tt.level {
				t.Errorf("expected level %s, got %s", tt.level, entry.Level)
			}
			if entry.Message != "test message" {
				t.Errorf("expected message 'test message', got %q", entry.Message)
			}
			if entry.RequestID != "req-456" {
				t.Errorf("expected request ID req-456, got %q", entry.RequestID)
			}
			if entry.Fields["key"] != "value" {
				t.Errorf("expected field key=value, got %v", entry.Fields["key"])
			}
			if _, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err != nil {
				t.Errorf("invalid timestamp format: %s", entry.Timestamp)
			}
		})
	}
}

func TestInfoWithDuration(t *testing.T) {
	entry := captureEntry(t, func(l *Logger) {
		l.InfoWithDuration("req-456", "dispatch finished", 123.45, map[string]interface{}{
			"capability": "claim_validation",
		})
	})

	if entry.Fields["duration_ms"] != 123.45 {
		t.Errorf("expected duration_ms 123.45, got %v", entry.Fields["duration_ms"])
	}
	if entry.Fields["capability"] != "claim_validation" {
		t.Errorf("expected capability field preserved, got %v", entry.Fields["capability"])
	}
	if entry.Level != INFO {
		t.Errorf("expected INFO level, got %s", entry.Level)
	}
}

func TestErrorWithCode(t *testing.T) {
	entry := captureEntry(t, func(l *Logger) {
		l.ErrorWithCode("req-456", "request failed", 502, &testError{msg: "upstream down"}, nil)
	})

	code, ok := entry.Fields["status_code"].(float64)
	if !ok || int(code) != 502 {
		t.Errorf("expected status_code 502, got %v", entry.Fields["status_code"])
	}
	if entry.Fields["error"] != "upstream down" {
		t.Errorf("expected error field, got %v", entry.Fields["error"])
	}
	if entry.Level != ERROR {
		t.Errorf("expected ERROR level, got %s", entry.Level)
	}
}

func TestJSONMarshalError(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logger := New("test-component")
	// Channels cannot be marshaled to JSON.
	logger.Info("req-456", "test message", map[string]interface{}{
		"channel": make(chan int),
	})

	if !strings.Contains(buf.String(), "Failed to marshal log entry") {
		t.Error("expected error message about JSON marshaling failure")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func BenchmarkLog(b *testing.B) {
	logger := New("benchmark-component")
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fields := map[string]interface{}{
		"capability": "claim_validation",
		"outcome":    "success",
		"duration":   45.67,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("req-456", "dispatch finished", fields)
	}
}
