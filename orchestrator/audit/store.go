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

package audit

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"brainsait/platform/shared/logger"
)

const (
	storeQueueSize     = 1000
	storeBatchSize     = 50
	storeFlushInterval = 5 * time.Second
)

const createAuditTableSQL = `
CREATE TABLE IF NOT EXISTS operation_audit (
	id           TEXT PRIMARY KEY,
	capability   TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	role         TEXT,
	provider     TEXT,
	detail       TEXT,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	duration_ms  BIGINT NOT NULL
)`

// Store mirrors audit records to PostgreSQL. Writes are queued and batched
// in the background; a full queue or a failed flush drops records with a
// diagnostic and never affects the in-memory log. A nil *Store is a valid
// no-op mirror.
type Store struct {
	db    *sql.DB
	queue chan Record
	done  chan struct{}
	wg    sync.WaitGroup
	log   *logger.Logger
}

// NewStore connects to PostgreSQL and starts the background writer. An
// empty databaseURL returns (nil, nil): mirroring is optional.
func NewStore(databaseURL string, log *logger.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach audit database: %w", err)
	}
	store, err := NewStoreWithDB(db, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStoreWithDB wraps an existing connection. The schema is created when
// absent.
func NewStoreWithDB(db *sql.DB, log *logger.Logger) (*Store, error) {
	if _, err := db.Exec(createAuditTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create audit table: %w", err)
	}
	s := &Store{
		db:    db,
		queue: make(chan Record, storeQueueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	s.wg.Add(1)
	go s.writeLoop()
	return s, nil
}

// Mirror enqueues a record for durable storage. It never blocks: when the
// queue is full the record is dropped with a diagnostic.
func (s *Store) Mirror(r Record) {
	if s == nil {
		return
	}
	select {
	case s.queue <- r:
	default:
		if s.log != nil {
			s.log.Warn(r.ID, "audit mirror queue full, dropping record", map[string]interface{}{
				"capability": string(r.Kind),
				"outcome":    string(r.Outcome),
			})
		}
	}
}

// Close flushes pending records and stops the writer.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	close(s.done)
	s.wg.Wait()
	return s.db.Close()
}

func (s *Store) writeLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(storeFlushInterval)
	defer ticker.Stop()

	batch := make([]Record, 0, storeBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		s.flush(batch)
		batch = batch[:0]
	}

	for {
		select {
		case r := <-s.queue:
			batch = append(batch, r)
			if len(batch) >= storeBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			// Drain whatever is queued before exiting.
			for {
				select {
				case r := <-s.queue:
					batch = append(batch, r)
					if len(batch) >= storeBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *Store) flush(batch []Record) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logFlushError(err, len(batch))
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO operation_audit
		(id, capability, outcome, role, provider, detail, started_at, completed_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		tx.Rollback()
		s.logFlushError(err, len(batch))
		return
	}

	for _, r := range batch {
		if _, err := stmt.Exec(r.ID, string(r.Kind), string(r.Outcome), r.Role, r.Provider,
			r.Detail, r.StartedAt, r.CompletedAt, r.Duration.Milliseconds()); err != nil {
			stmt.Close()
			tx.Rollback()
			s.logFlushError(err, len(batch))
			return
		}
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		s.logFlushError(err, len(batch))
	}
}

func (s *Store) logFlushError(err error, count int) {
	if s.log != nil {
		s.log.Error("", "audit mirror flush failed", map[string]interface{}{
			"error":   err.Error(),
			"records": count,
		})
	}
}
