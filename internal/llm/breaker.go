package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// breakerGenerator wraps a TextGenerator with a circuit breaker so a
// misbehaving model endpoint fails fast instead of stalling every
// planning stage behind it.
type breakerGenerator struct {
	inner   TextGenerator
	breaker *gobreaker.CircuitBreaker
}

// WithBreaker wraps gen with a circuit breaker tuned for slow LLM calls.
func WithBreaker(gen TextGenerator, logger *zap.Logger) TextGenerator {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Interval:    2 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &breakerGenerator{inner: gen, breaker: cb}
}

func (b *breakerGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.GenerateContent(ctx, prompt)
	})
	if err != nil {
		return ContentResponse{}, err
	}
	return result.(ContentResponse), nil
}
