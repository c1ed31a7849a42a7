// Package metrics persists per-agent execution measurements: token
// usage and latency for every model-backed pipeline call.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecofood-backend/internal/shared"
)

// ExecutionMetric records metadata for a single agent execution.
type ExecutionMetric struct {
	AgentName        string    `json:"agent_name"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	LatencyMS        int64     `json:"latency_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves the metas from one pipeline run. Metas without token
// usage are skipped.
func (s *Store) Record(ctx context.Context, metas []shared.AgentMeta) {
	for _, meta := range metas {
		if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
			continue
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO agent_metrics (agent_name, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)`,
			meta.AgentName, meta.Usage.Model,
			meta.Usage.PromptTokens, meta.Usage.CompletionTokens,
			meta.Latency.Milliseconds(), time.Now().UTC())
		if err != nil {
			// Metrics are best effort; a failed insert never fails a run.
			continue
		}
	}
}

// Recent returns the most recent execution metrics, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]ExecutionMetric, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_name, model, prompt_tokens, completion_tokens, latency_ms, timestamp
		FROM agent_metrics ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}
	defer rows.Close()

	var result []ExecutionMetric
	for rows.Next() {
		var m ExecutionMetric
		if err := rows.Scan(&m.AgentName, &m.Model, &m.PromptTokens, &m.CompletionTokens, &m.LatencyMS, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
