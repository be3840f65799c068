package result

import (
	"context"
	"errors"
	"time"

	"apiwatch/internals/modules/probe"
	"apiwatch/pkg/retry"
	"apiwatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type Repository struct {
	pool    *pgxpool.Pool
	dbRetry retry.Policy
	logger  *zerolog.Logger
}

func NewRepository(pool *pgxpool.Pool, dbRetry retry.Policy, logger *zerolog.Logger) *Repository {
	return &Repository{
		pool:    pool,
		dbRetry: dbRetry,
		logger:  logger,
	}
}

func (r *Repository) Insert(ctx context.Context, log ProbeLog) error {
	const op string = "repo.probe_log.insert"

	err := r.dbRetry.Do(ctx, func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO monitor_logs (monitor_id, status, status_code, response_time_ms, checked_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			utils.ToPgUUID(log.MonitorID), string(log.Status), log.StatusCode, log.ResponseTimeMs,
			utils.ToPgTimestamptz(log.CheckedAt),
		)
		return execErr
	})
	if err == nil {
		return nil
	}

	return utils.WrapRepoError(op, err, false, r.logger)
}

// LatestByMonitor returns the newest log row for a monitor. The id tiebreak
// keeps the selection deterministic if two rows ever share a timestamp.
// found=false on a monitor with no history yet.
func (r *Repository) LatestByMonitor(ctx context.Context, monitorID uuid.UUID) (ProbeLog, bool, error) {
	const op string = "repo.probe_log.latest_by_monitor"

	var log ProbeLog
	var status string

	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT id, monitor_id, status, status_code, response_time_ms, checked_at
			 FROM monitor_logs
			 WHERE monitor_id = $1
			 ORDER BY checked_at DESC, id DESC
			 LIMIT 1`,
			utils.ToPgUUID(monitorID),
		)
		var mID pgtype.UUID
		scanErr := row.Scan(&log.ID, &mID, &status, &log.StatusCode, &log.ResponseTimeMs, &log.CheckedAt)
		if scanErr != nil {
			return scanErr
		}
		log.MonitorID = utils.FromPgUUID(mID)
		return nil
	})
	if err == nil {
		log.Status = probe.Status(status)
		return log, true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ProbeLog{}, false, nil
	}

	return ProbeLog{}, false, utils.WrapRepoError(op, err, false, r.logger)
}

// DeleteOlderThan removes log rows past the retention window and reports
// how many went away.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op string = "repo.probe_log.delete_older_than"

	var deleted int64
	err := r.dbRetry.Do(ctx, func() error {
		tag, execErr := r.pool.Exec(ctx,
			`DELETE FROM monitor_logs WHERE checked_at < $1`,
			utils.ToPgTimestamptz(cutoff),
		)
		if execErr != nil {
			return execErr
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, utils.WrapRepoError(op, err, false, r.logger)
	}

	return deleted, nil
}

func (r *Repository) GetUptimeStats(ctx context.Context, monitorID uuid.UUID, since time.Time) (UptimeStats, error) {
	const op string = "repo.probe_log.uptime_stats"

	stats := UptimeStats{MonitorID: monitorID}

	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT count(*),
			        count(*) FILTER (WHERE status = 'UP'),
			        coalesce(avg(response_time_ms), 0),
			        coalesce(percentile_cont(0.95) WITHIN GROUP (ORDER BY response_time_ms), 0)
			 FROM monitor_logs
			 WHERE monitor_id = $1 AND checked_at >= $2`,
			utils.ToPgUUID(monitorID), utils.ToPgTimestamptz(since),
		)
		return row.Scan(&stats.TotalChecks, &stats.UpChecks, &stats.AvgLatencyMs, &stats.P95LatencyMs)
	})
	if err != nil {
		return UptimeStats{}, utils.WrapRepoError(op, err, false, r.logger)
	}

	if stats.TotalChecks > 0 {
		stats.UptimePercent = float64(stats.UpChecks) / float64(stats.TotalChecks) * 100
	}
	return stats, nil
}

func (r *Repository) GetTimeBuckets(ctx context.Context, monitorID uuid.UUID, since time.Time, bucket time.Duration) ([]TimeBucket, error) {
	const op string = "repo.probe_log.time_buckets"

	var buckets []TimeBucket

	err := r.dbRetry.Do(ctx, func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT to_timestamp(floor(extract(epoch FROM checked_at) / $3) * $3) AS bucket_start,
			        count(*),
			        count(*) FILTER (WHERE status = 'UP'),
			        coalesce(avg(response_time_ms), 0)
			 FROM monitor_logs
			 WHERE monitor_id = $1 AND checked_at >= $2
			 GROUP BY bucket_start
			 ORDER BY bucket_start`,
			utils.ToPgUUID(monitorID), utils.ToPgTimestamptz(since), bucket.Seconds(),
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		buckets = buckets[:0]
		for rows.Next() {
			var b TimeBucket
			if scanErr := rows.Scan(&b.BucketStart, &b.TotalChecks, &b.UpChecks, &b.AvgLatencyMs); scanErr != nil {
				return scanErr
			}
			buckets = append(buckets, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}

	return buckets, nil
}
