// Package jobs owns asynchronous plan-generation jobs: their lifecycle
// state, the append-only event log each job produces, and the fan-out of
// those events to live subscribers.
package jobs

import (
	"encoding/json"
	"time"
)

// Status is a job's lifecycle state.
type Status string

// Job lifecycle states. Completed, error, and cancelled are terminal.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// PlanJob is one plan-generation run: the unit of cancellation and
// progress observation.
type PlanJob struct {
	ID           string     `json:"id"`
	HouseholdID  int64      `json:"household_id"`
	WeekStart    string     `json:"week_start"`
	EcoFriendly  bool       `json:"eco_friendly"`
	UseLeftovers bool       `json:"use_leftovers"`
	Notes        string     `json:"notes,omitempty"`
	Status       Status     `json:"status"`
	Stage        string     `json:"stage,omitempty"`
	Error        string     `json:"error,omitempty"`
	PlanID       *int64     `json:"plan_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Event is one entry of a job's append-only event log. IDs increase
// monotonically per job, so a reconnecting subscriber can resume after
// the last id it saw.
type Event struct {
	ID        int64           `json:"id"`
	JobID     string          `json:"job_id"`
	Stage     string          `json:"stage"`
	Message   string          `json:"message"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
