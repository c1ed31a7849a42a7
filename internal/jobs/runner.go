package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"ecofood-backend/internal/mealplan"
	"ecofood-backend/internal/planner"
)

// runSink persists every pipeline event, fans it out to subscribers, and
// accumulates the plan timeline. Database writes use a background
// context so terminal events still land after a cancellation.
type runSink struct {
	reg      *Registry
	jobID    string
	timeline []mealplan.TimelineEvent
}

func (s *runSink) Emit(stage, message string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.reg.logger.Error("failed to marshal event payload",
				zap.String("job_id", s.jobID), zap.String("stage", stage), zap.Error(err))
		} else {
			raw = data
		}
	}

	ev, err := s.reg.repo.InsertEvent(context.Background(), s.jobID, stage, message, raw)
	if err != nil {
		s.reg.logger.Error("failed to persist job event",
			zap.String("job_id", s.jobID), zap.String("stage", stage), zap.Error(err))
		return
	}
	s.reg.bus.Publish(ev)
	s.timeline = append(s.timeline, mealplan.TimelineEvent{
		Agent:   agentForStage(stage),
		Stage:   stage,
		Payload: raw,
	})

	// Keep the job's coarse stage column in sync for polling clients.
	if jobStage, ok := stageTransitions[stage]; ok {
		if err := s.reg.repo.SetStage(context.Background(), s.jobID, jobStage); err != nil {
			s.reg.logger.Error("failed to update job stage",
				zap.String("job_id", s.jobID), zap.Error(err))
		}
	}
}

var stageTransitions = map[string]string{
	planner.StageProfileReady:  "architecting",
	planner.StagePlanCandidate: "curating",
	planner.StagePlanned:       "reviewing",
	planner.StagePlanFinal:     "synthesizing",
}

func agentForStage(stage string) string {
	switch stage {
	case planner.StageProfileReady:
		return "Profiler"
	case planner.StagePlanCandidate, planner.StageFallback:
		return "Architect"
	case planner.StagePlanned:
		return "Chef"
	case planner.StageReviewNutrition:
		return "Nutritionist"
	case planner.StageReviewPantry:
		return "PantryChef"
	case planner.StagePlanFinal:
		return "Synthesizer"
	default:
		return "System"
	}
}

// run drives one job through the pipeline. It is the only writer of the
// job's state; readers see snapshots through the repository and replayed
// events through the bus.
func (r *Registry) run(ctx context.Context, job PlanJob, req CreateRequest) {
	defer r.wg.Done()
	defer r.forgetCancel(job.ID)
	defer r.bus.Close(job.ID)

	sink := &runSink{reg: r, jobID: job.ID}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job runner panicked",
				zap.String("job_id", job.ID), zap.Any("panic", rec))
			r.finish(sink, job.ID, StatusError, fmt.Sprintf("internal failure: %v", rec), nil, nil)
		}
	}()

	if err := r.repo.MarkRunning(context.Background(), job.ID, "profiling"); err != nil {
		r.logger.Error("failed to mark job running", zap.String("job_id", job.ID), zap.Error(err))
	}
	sink.Emit(planner.StagePlanning, "Plan generation started", nil)

	// Snapshot the household at run start; later edits do not affect
	// this run.
	h, err := r.households.GetHousehold(context.Background(), job.HouseholdID)
	if err != nil {
		r.finish(sink, job.ID, StatusError, fmt.Sprintf("failed to load household: %v", err), nil, nil)
		return
	}

	planReq := planner.Request{
		HouseholdID:  job.HouseholdID,
		WeekStart:    job.WeekStart,
		EcoFriendly:  job.EcoFriendly,
		UseLeftovers: job.UseLeftovers,
		Notes:        job.Notes,
		Members:      h.Members,
		Tools:        h.Tools,
		Pantry:       req.Pantry,
	}

	result, err := r.workflow.Generate(ctx, planReq, sink)
	if err != nil {
		if ctx.Err() != nil {
			r.finish(sink, job.ID, StatusCancelled, "", nil, nil)
			return
		}
		r.finish(sink, job.ID, StatusError, err.Error(), nil, nil)
		return
	}

	if r.metrics != nil && len(result.Metas) > 0 {
		r.metrics.Record(context.Background(), result.Metas)
	}

	// A cancellation racing the final stage still means no plan.
	if ctx.Err() != nil {
		r.finish(sink, job.ID, StatusCancelled, "", nil, nil)
		return
	}

	saved, err := r.plans.SavePlan(context.Background(), mealplan.MealPlan{
		HouseholdID:  job.HouseholdID,
		WeekStart:    job.WeekStart,
		SessionID:    job.ID,
		EcoFriendly:  job.EcoFriendly,
		UseLeftovers: job.UseLeftovers,
		Notes:        job.Notes,
		Timeline:     sink.timeline,
		Entries:      result.Entries,
	})
	if err != nil {
		r.finish(sink, job.ID, StatusError, fmt.Sprintf("failed to persist plan: %v", err), nil, nil)
		return
	}

	r.finish(sink, job.ID, StatusCompleted, "", &saved.ID, map[string]any{
		"plan_id":              saved.ID,
		"meal_count":           len(result.Entries),
		"shopping_item_count":  len(result.ShoppingList.All),
		"calendar_event_count": result.Calendar.EventCount,
	})
}

// finish emits the terminal lifecycle event and then records the
// terminal state. The event goes first: once the job row is terminal, a
// subscriber may treat the stream as closed, so the event must already
// be in the history it replays.
func (r *Registry) finish(sink *runSink, jobID string, status Status, errDetail string, planID *int64, payload map[string]any) {
	switch status {
	case StatusCompleted:
		sink.Emit(planner.StageCompleted, "Plan generation completed", payload)
	case StatusCancelled:
		sink.Emit(planner.StageCancelled, "Plan generation cancelled", nil)
	default:
		sink.Emit(planner.StageError, errDetail, nil)
	}

	if err := r.repo.Finish(context.Background(), jobID, status, errDetail, planID); err != nil {
		r.logger.Error("failed to record job result",
			zap.String("job_id", jobID), zap.Error(err))
	}

	if r.notifier != nil {
		if job, err := r.repo.GetJob(context.Background(), jobID); err == nil {
			r.notifier.JobFinished(context.Background(), job)
		}
	}
}
