package monitor

import (
	"context"

	"github.com/google/uuid"
)

// StatusCache is the redis-backed latest-status view, best-effort only.
type StatusCache interface {
	GetStatus(ctx context.Context, monitorID uuid.UUID) (map[string]string, error)
	DelStatus(ctx context.Context, monitorID uuid.UUID) error
}

type Service struct {
	monitorRepo *Repository
	cache       StatusCache
}

func NewService(monitorRepo *Repository, cache StatusCache) *Service {
	return &Service{
		monitorRepo: monitorRepo,
		cache:       cache,
	}
}

func (s *Service) CreateMonitor(ctx context.Context, cmd CreateMonitorCmd) (uuid.UUID, error) {
	return s.monitorRepo.Create(ctx, cmd)
}

func (s *Service) GetMonitor(ctx context.Context, userID, monitorID uuid.UUID) (Monitor, error) {
	return s.monitorRepo.Get(ctx, userID, monitorID)
}

func (s *Service) GetAllMonitors(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]Monitor, error) {
	return s.monitorRepo.GetAll(ctx, userID, limit, offset)
}

func (s *Service) UpdateMonitor(ctx context.Context, cmd UpdateMonitorCmd) error {
	return s.monitorRepo.Update(ctx, cmd)
}

func (s *Service) SetMonitorActive(ctx context.Context, userID, monitorID uuid.UUID, active bool) error {
	if err := s.monitorRepo.SetActive(ctx, userID, monitorID, active); err != nil {
		return err
	}

	// a paused monitor's cached status is stale by definition
	if !active && s.cache != nil {
		_ = s.cache.DelStatus(ctx, monitorID)
	}
	return nil
}

func (s *Service) DeleteMonitor(ctx context.Context, userID, monitorID uuid.UUID) error {
	if err := s.monitorRepo.Delete(ctx, userID, monitorID); err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.DelStatus(ctx, monitorID)
	}
	return nil
}

// GetLatestStatus serves the cached last observation. Ownership is checked
// against the database before touching the cache.
func (s *Service) GetLatestStatus(ctx context.Context, userID, monitorID uuid.UUID) (map[string]string, error) {
	if _, err := s.monitorRepo.Get(ctx, userID, monitorID); err != nil {
		return nil, err
	}

	if s.cache == nil {
		return nil, nil
	}
	return s.cache.GetStatus(ctx, monitorID)
}
