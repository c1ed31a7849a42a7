package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecofood-backend/internal/household"
	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/planner"
	"ecofood-backend/internal/shared"
	"ecofood-backend/internal/tools"
)

// ErrAlreadyFinished signals a cancel request against a terminal job.
// Callers should treat it as a conflict, not a failure.
var ErrAlreadyFinished = fmt.Errorf("job already finished")

// ErrInvalidRequest wraps request validation failures so callers can
// map them to a client error with errors.Is.
var ErrInvalidRequest = fmt.Errorf("invalid job request")

// Notifier is told when a job reaches a terminal state.
type Notifier interface {
	JobFinished(ctx context.Context, job *PlanJob)
}

// MetricsRecorder stores per-agent usage measurements from a run.
type MetricsRecorder interface {
	Record(ctx context.Context, metas []shared.AgentMeta)
}

// CreateRequest is the request to start an asynchronous planning job.
type CreateRequest struct {
	HouseholdID  int64              `json:"household_id" validate:"required"`
	WeekStart    string             `json:"week_start" validate:"required"`
	EcoFriendly  bool               `json:"eco_friendly"`
	UseLeftovers bool               `json:"use_leftovers"`
	Notes        string             `json:"notes"`
	Pantry       []tools.PantryItem `json:"pantry"`
}

// Registry owns all plan jobs: creation, snapshots, cancellation, and
// event subscriptions. Each created job gets its own runner goroutine;
// that runner is the only writer of the job's state.
type Registry struct {
	repo       *Repository
	bus        *bus
	households *household.Repository
	plans      *mealplan.Repository
	workflow   *planner.Workflow
	notifier   Notifier
	metrics    MetricsRecorder
	logger     *zap.Logger
	validate   *validator.Validate

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRegistry creates a Registry. notifier and metrics may be nil.
func NewRegistry(
	repo *Repository,
	households *household.Repository,
	plans *mealplan.Repository,
	workflow *planner.Workflow,
	notifier Notifier,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		repo:       repo,
		bus:        newBus(),
		households: households,
		plans:      plans,
		workflow:   workflow,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		validate:   validator.New(),
		cancels:    map[string]context.CancelFunc{},
	}
}

// Create validates the request, stores a queued job, and schedules its
// runner. It returns as soon as the job record exists; the pipeline runs
// in the background, detached from the caller's context.
func (r *Registry) Create(ctx context.Context, req CreateRequest) (*PlanJob, error) {
	if err := r.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	week, err := mealplan.NormalizeWeekStart(req.WeekStart)
	if err != nil {
		return nil, err
	}
	if _, err := r.households.GetHousehold(ctx, req.HouseholdID); err != nil {
		return nil, fmt.Errorf("household %d: %w", req.HouseholdID, err)
	}

	job := PlanJob{
		ID:           uuid.NewString(),
		HouseholdID:  req.HouseholdID,
		WeekStart:    week,
		EcoFriendly:  req.EcoFriendly,
		UseLeftovers: req.UseLeftovers,
		Notes:        req.Notes,
		Status:       StatusQueued,
	}
	if err := r.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if ev, err := r.repo.InsertEvent(ctx, job.ID, planner.StageStarted, "Plan job accepted", nil); err == nil {
		r.bus.Publish(ev)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancels[job.ID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(runCtx, job, req)

	return r.repo.GetJob(ctx, job.ID)
}

// GetJob returns a snapshot of the job, for polling fallback.
func (r *Registry) GetJob(ctx context.Context, id string) (*PlanJob, error) {
	return r.repo.GetJob(ctx, id)
}

// Cancel requests cooperative cancellation. Terminal jobs return
// ErrAlreadyFinished; missing jobs return ErrNotFound.
func (r *Registry) Cancel(ctx context.Context, id string) error {
	job, err := r.repo.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Status.Terminal() {
		return ErrAlreadyFinished
	}

	r.mu.Lock()
	cancel, ok := r.cancels[id]
	r.mu.Unlock()
	if ok {
		cancel()
		return nil
	}

	// No runner owns the job (left over from a previous process); mark
	// it cancelled directly.
	if err := r.repo.Finish(ctx, id, StatusCancelled, "", nil); err != nil {
		return err
	}
	if ev, err := r.repo.InsertEvent(ctx, id, planner.StageCancelled, "Plan generation cancelled", nil); err == nil {
		r.bus.Publish(ev)
	}
	r.bus.Close(id)
	return nil
}

// Subscribe opens an event stream for the job: full replay of events
// with id greater than afterID, then live events until the job's stream
// closes. Pass afterID 0 for the complete history.
func (r *Registry) Subscribe(ctx context.Context, jobID string, afterID int64) (<-chan Event, func(), error) {
	job, err := r.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	// Jobs finished before this process started have their history only
	// in the database; seed the bus so replay still works.
	persisted, err := r.repo.ListEvents(ctx, jobID, 0)
	if err != nil {
		return nil, nil, err
	}
	r.bus.Seed(jobID, persisted, job.Status.Terminal())

	ch, unsubscribe := r.bus.Subscribe(jobID, afterID)
	return ch, unsubscribe, nil
}

// Wait blocks until all runner goroutines have finished. Used by
// graceful shutdown and tests.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) forgetCancel(id string) {
	r.mu.Lock()
	delete(r.cancels, id)
	r.mu.Unlock()
}
