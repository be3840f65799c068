package analytics

import (
	"context"
	"time"

	"apiwatch/internals/modules/monitor"
	"apiwatch/internals/modules/result"

	"github.com/google/uuid"
)

// MonitorGetter scopes analytics to monitors the caller owns.
type MonitorGetter interface {
	Get(ctx context.Context, userID, monitorID uuid.UUID) (monitor.Monitor, error)
}

type LogAggregator interface {
	GetUptimeStats(ctx context.Context, monitorID uuid.UUID, since time.Time) (result.UptimeStats, error)
	GetTimeBuckets(ctx context.Context, monitorID uuid.UUID, since time.Time, bucket time.Duration) ([]result.TimeBucket, error)
}

type Service struct {
	monitors MonitorGetter
	logs     LogAggregator
}

func NewService(monitors MonitorGetter, logs LogAggregator) *Service {
	return &Service{
		monitors: monitors,
		logs:     logs,
	}
}

func (s *Service) UptimeSummary(ctx context.Context, userID, monitorID uuid.UUID, window time.Duration) (result.UptimeStats, error) {
	if _, err := s.monitors.Get(ctx, userID, monitorID); err != nil {
		return result.UptimeStats{}, err
	}
	return s.logs.GetUptimeStats(ctx, monitorID, time.Now().Add(-window))
}

func (s *Service) LatencySeries(ctx context.Context, userID, monitorID uuid.UUID, window, bucket time.Duration) ([]result.TimeBucket, error) {
	if _, err := s.monitors.Get(ctx, userID, monitorID); err != nil {
		return nil, err
	}
	return s.logs.GetTimeBuckets(ctx, monitorID, time.Now().Add(-window), bucket)
}
