package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = fmt.Errorf("job not found")

// Repository persists jobs and their event logs.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateJob stores a new queued job.
func (r *Repository) CreateJob(ctx context.Context, job PlanJob) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plan_jobs (id, household_id, week_start, eco_friendly, use_leftovers, notes, status, stage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.HouseholdID, job.WeekStart,
		boolToInt(job.EcoFriendly), boolToInt(job.UseLeftovers),
		job.Notes, string(job.Status), job.Stage)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetJob loads one job snapshot.
func (r *Repository) GetJob(ctx context.Context, id string) (*PlanJob, error) {
	var job PlanJob
	var status string
	var eco, leftovers int
	var notes, errDetail sql.NullString
	var planID sql.NullInt64
	var startedAt, completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, `
		SELECT id, household_id, week_start, eco_friendly, use_leftovers, notes,
		       status, stage, error, plan_id, created_at, started_at, completed_at
		FROM plan_jobs WHERE id = ?`, id).
		Scan(&job.ID, &job.HouseholdID, &job.WeekStart, &eco, &leftovers, &notes,
			&status, &job.Stage, &errDetail, &planID, &job.CreatedAt, &startedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	job.EcoFriendly = eco != 0
	job.UseLeftovers = leftovers != 0
	job.Notes = notes.String
	job.Status = Status(status)
	job.Error = errDetail.String
	if planID.Valid {
		job.PlanID = &planID.Int64
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

// MarkRunning transitions a job to running and records its start time.
func (r *Repository) MarkRunning(ctx context.Context, id, stage string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE plan_jobs SET status = ?, stage = ?, started_at = ? WHERE id = ?",
		string(StatusRunning), stage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return nil
}

// SetStage updates the stage a running job is in.
func (r *Repository) SetStage(ctx context.Context, id, stage string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE plan_jobs SET stage = ? WHERE id = ?", stage, id)
	if err != nil {
		return fmt.Errorf("failed to set job stage: %w", err)
	}
	return nil
}

// Finish records a job's terminal state.
func (r *Repository) Finish(ctx context.Context, id string, status Status, errDetail string, planID *int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE plan_jobs SET status = ?, error = ?, plan_id = ?, completed_at = ? WHERE id = ?`,
		string(status), nullIfEmpty(errDetail), planID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish job: %w", err)
	}
	return nil
}

// InsertEvent appends an event to a job's log and returns its id.
func (r *Repository) InsertEvent(ctx context.Context, jobID, stage, message string, payload json.RawMessage) (Event, error) {
	now := time.Now().UTC()
	var payloadText any
	if len(payload) > 0 {
		payloadText = string(payload)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO plan_job_events (job_id, stage, message, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		jobID, stage, message, payloadText, now)
	if err != nil {
		return Event{}, fmt.Errorf("failed to insert job event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, fmt.Errorf("failed to read event id: %w", err)
	}
	return Event{ID: id, JobID: jobID, Stage: stage, Message: message, Payload: payload, CreatedAt: now}, nil
}

// ListEvents returns a job's events with id greater than afterID, oldest
// first.
func (r *Repository) ListEvents(ctx context.Context, jobID string, afterID int64) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_id, stage, message, payload, created_at
		FROM plan_job_events WHERE job_id = ? AND id > ? ORDER BY id`, jobID, afterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var payload sql.NullString
		if err := rows.Scan(&ev.ID, &ev.JobID, &ev.Stage, &ev.Message, &payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if payload.Valid {
			ev.Payload = json.RawMessage(payload.String)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
