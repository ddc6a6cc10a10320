// Package riddle sequences riddle generation against the quota tracker
// and the store.
package riddle

import (
	"context"
	"fmt"

	"github.com/riddleworks/dailyriddle/internal/generator"
	"github.com/riddleworks/dailyriddle/internal/models"
	"github.com/riddleworks/dailyriddle/internal/quota"
	"github.com/riddleworks/dailyriddle/internal/store"
	log "github.com/sirupsen/logrus"
)

// Service orchestrates riddle generation. All collaborators are injected
// at construction; the service holds no other state.
type Service struct {
	store   *store.RiddleStore
	tracker *quota.Tracker
	gen     generator.Generator
}

// NewService constructs a Service.
func NewService(riddleStore *store.RiddleStore, tracker *quota.Tracker, gen generator.Generator) *Service {
	return &Service{store: riddleStore, tracker: tracker, gen: gen}
}

// Result reports the outcome of a generation request.
type Result struct {
	Generated int            // How many riddles were committed.
	Newest    *models.Riddle // The most recently committed riddle, if any.
	Remaining int            // The client's remaining quota after the batch.
}

// GenerateForClient runs the quota-gated on-demand path. Up to count
// riddles are generated, capped by the client's remaining quota evaluated
// once at batch start. Quota is consumed only after a successful commit,
// so failed generations cost nothing.
//
// With zero remaining quota it returns quota.ErrExceeded. A batch that
// fails partway reports the riddles that did complete; the error is
// returned only when nothing completed.
func (s *Service) GenerateForClient(ctx context.Context, clientKey string, count int) (Result, error) {
	if count < 1 {
		count = 1
	}

	remaining := s.tracker.Remaining(clientKey)
	if remaining <= 0 {
		return Result{Remaining: 0}, quota.ErrExceeded
	}
	if count > remaining {
		count = remaining
	}

	result := Result{Remaining: remaining}
	var lastErr error
	for i := 0; i < count; i++ {
		created, errAttempt := s.generateOnce(ctx)
		if errAttempt != nil {
			log.WithError(errAttempt).Warnf("riddle: generation attempt %d/%d failed", i+1, count)
			lastErr = errAttempt
			break
		}
		result.Generated++
		result.Newest = created
		result.Remaining = s.tracker.Increment(clientKey)
	}

	if result.Generated == 0 && lastErr != nil {
		return result, lastErr
	}
	return result, nil
}

// GenerateScheduled runs the unmetered timer-driven path.
func (s *Service) GenerateScheduled(ctx context.Context) (*models.Riddle, error) {
	return s.generateOnce(ctx)
}

// GenerateUnmetered runs a single generation with no quota interaction,
// used by the paid and admin paths.
func (s *Service) GenerateUnmetered(ctx context.Context) (*models.Riddle, error) {
	return s.generateOnce(ctx)
}

// Remaining reports the client's remaining quota for today.
func (s *Service) Remaining(clientKey string) int {
	return s.tracker.Remaining(clientKey)
}

// MaxPerDay returns the configured daily ceiling.
func (s *Service) MaxPerDay() int {
	return s.tracker.MaxPerDay()
}

// generateOnce calls the generation collaborator and commits the result
// as the new latest riddle. A generation failure persists nothing.
func (s *Service) generateOnce(ctx context.Context) (*models.Riddle, error) {
	generated, errGenerate := s.gen.Generate(ctx)
	if errGenerate != nil {
		return nil, errGenerate
	}

	created, errCreate := s.store.Create(ctx, generated.Question, generated.Answer, true)
	if errCreate != nil {
		return nil, fmt.Errorf("riddle: commit generated riddle: %w", errCreate)
	}
	return created, nil
}
