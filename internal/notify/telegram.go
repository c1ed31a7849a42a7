// Package notify pushes job-outcome notifications to Telegram. The
// notifier is optional; a nil *Telegram is a no-op.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ecofood-backend/internal/jobs"
)

// Telegram sends a short message to a fixed chat when a plan job ends.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegram initializes the bot API. Returns an error when the token
// is rejected.
func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("telegram notifier ready", zap.String("account", api.Self.UserName))
	return &Telegram{api: api, chatID: chatID, logger: logger}, nil
}

// JobFinished reports a job's terminal state. Send failures are logged
// and swallowed; notifications never affect the job itself.
func (t *Telegram) JobFinished(_ context.Context, job *jobs.PlanJob) {
	if t == nil {
		return
	}

	var text string
	switch job.Status {
	case jobs.StatusCompleted:
		text = fmt.Sprintf("✅ Meal plan ready for week of %s.", job.WeekStart)
	case jobs.StatusCancelled:
		text = fmt.Sprintf("🚫 Meal plan for week of %s was cancelled.", job.WeekStart)
	default:
		text = fmt.Sprintf("❌ Meal plan for week of %s failed: %s", job.WeekStart, job.Error)
	}

	if _, err := t.api.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		t.logger.Warn("failed to send telegram notification",
			zap.String("job_id", job.ID), zap.Error(err))
	}
}
