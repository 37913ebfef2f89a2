// Package activity keeps the log of mutating requests made against the API.
package activity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hospital/hospital/internal/model"
	"github.com/hospital/hospital/internal/store"
)

type Service struct {
	repo   store.ActivityRepository
	logger zerolog.Logger
}

func NewService(repo store.ActivityRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "activity").Logger()}
}

// Record appends e to the log. It satisfies middleware.ActivityRecorder.
func (s *Service) Record(ctx context.Context, e *model.ActivityEntry) error {
	if e.Action == "" {
		return model.Invalid("action", "is required")
	}
	return s.repo.Append(ctx, e)
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*model.ActivityEntry, int, error) {
	return s.repo.List(ctx, limit, offset)
}
