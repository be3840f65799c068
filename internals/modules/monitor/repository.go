package monitor

import (
	"context"
	"time"

	"apiwatch/pkg/apperror"
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

const monitorColumns = `id, user_id, url, interval_minutes, alert_threshold, is_active,
	last_checked_at, last_alert_sent_at, status_change_count, created_at`

func (r *Repository) scanMonitor(row pgx.Row) (Monitor, error) {
	var m Monitor
	var id, userID pgtype.UUID
	var lastChecked, lastAlert pgtype.Timestamptz

	err := row.Scan(&id, &userID, &m.URL, &m.IntervalMinutes, &m.AlertThreshold, &m.IsActive,
		&lastChecked, &lastAlert, &m.StatusChangeCount, &m.CreatedAt)
	if err != nil {
		return Monitor{}, err
	}

	m.ID = utils.FromPgUUID(id)
	m.UserID = utils.FromPgUUID(userID)
	m.LastCheckedAt = utils.FromPgTimestamptz(lastChecked)
	m.LastAlertSentAt = utils.FromPgTimestamptz(lastAlert)
	return m, nil
}

func (r *Repository) Create(ctx context.Context, cmd CreateMonitorCmd) (uuid.UUID, error) {
	const op string = "repo.monitor.create"

	var id pgtype.UUID
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO monitors (user_id, url, interval_minutes, alert_threshold)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			utils.ToPgUUID(cmd.UserID), cmd.URL, cmd.IntervalMinutes, cmd.AlertThreshold,
		)
		return row.Scan(&id)
	})
	if err != nil {
		return uuid.Nil, utils.WrapRepoError(op, err, false, r.logger)
	}

	return utils.FromPgUUID(id), nil
}

func (r *Repository) Get(ctx context.Context, userID, monitorID uuid.UUID) (Monitor, error) {
	const op string = "repo.monitor.get"

	var m Monitor
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+monitorColumns+` FROM monitors WHERE id = $1 AND user_id = $2`,
			utils.ToPgUUID(monitorID), utils.ToPgUUID(userID),
		)
		var scanErr error
		m, scanErr = r.scanMonitor(row)
		return scanErr
	})
	if err != nil {
		return Monitor{}, utils.WrapRepoError(op, err, true, r.logger)
	}

	return m, nil
}

func (r *Repository) GetAll(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]Monitor, error) {
	const op string = "repo.monitor.get_all"

	var monitors []Monitor
	err := r.dbRetry.Do(ctx, func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT `+monitorColumns+` FROM monitors
			 WHERE user_id = $1
			 ORDER BY created_at DESC
			 LIMIT $2 OFFSET $3`,
			utils.ToPgUUID(userID), limit, offset,
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		monitors = monitors[:0]
		for rows.Next() {
			m, scanErr := r.scanMonitor(rows)
			if scanErr != nil {
				return scanErr
			}
			monitors = append(monitors, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}

	return monitors, nil
}

// ListActive returns every monitor the poll cycle should check.
func (r *Repository) ListActive(ctx context.Context) ([]Monitor, error) {
	const op string = "repo.monitor.list_active"

	var monitors []Monitor
	err := r.dbRetry.Do(ctx, func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT `+monitorColumns+` FROM monitors WHERE is_active = true ORDER BY created_at`,
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		monitors = monitors[:0]
		for rows.Next() {
			m, scanErr := r.scanMonitor(rows)
			if scanErr != nil {
				return scanErr
			}
			monitors = append(monitors, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}

	return monitors, nil
}

func (r *Repository) Update(ctx context.Context, cmd UpdateMonitorCmd) error {
	const op string = "repo.monitor.update"

	var affected int64
	err := r.dbRetry.Do(ctx, func() error {
		tag, execErr := r.pool.Exec(ctx,
			`UPDATE monitors
			 SET url = $1, interval_minutes = $2, alert_threshold = $3, is_active = $4
			 WHERE id = $5 AND user_id = $6`,
			cmd.URL, cmd.IntervalMinutes, cmd.AlertThreshold, cmd.IsActive,
			utils.ToPgUUID(cmd.MonitorID), utils.ToPgUUID(cmd.UserID),
		)
		if execErr != nil {
			return execErr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}
	if affected == 0 {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "monitor not found or not owned by user",
		}
	}

	return nil
}

func (r *Repository) SetActive(ctx context.Context, userID, monitorID uuid.UUID, active bool) error {
	const op string = "repo.monitor.set_active"

	var affected int64
	err := r.dbRetry.Do(ctx, func() error {
		tag, execErr := r.pool.Exec(ctx,
			`UPDATE monitors SET is_active = $1 WHERE id = $2 AND user_id = $3`,
			active, utils.ToPgUUID(monitorID), utils.ToPgUUID(userID),
		)
		if execErr != nil {
			return execErr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}
	if affected == 0 {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "monitor not found or not owned by user",
		}
	}

	return nil
}

// Delete removes the monitor; logs and alerts cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, userID, monitorID uuid.UUID) error {
	const op string = "repo.monitor.delete"

	var affected int64
	err := r.dbRetry.Do(ctx, func() error {
		tag, execErr := r.pool.Exec(ctx,
			`DELETE FROM monitors WHERE id = $1 AND user_id = $2`,
			utils.ToPgUUID(monitorID), utils.ToPgUUID(userID),
		)
		if execErr != nil {
			return execErr
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}
	if affected == 0 {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "monitor not found or not owned by user",
		}
	}

	return nil
}

// UpdateLastChecked is the worker's per-check bookkeeping write.
func (r *Repository) UpdateLastChecked(ctx context.Context, monitorID uuid.UUID, checkedAt time.Time) error {
	const op string = "repo.monitor.update_last_checked"

	err := r.dbRetry.Do(ctx, func() error {
		_, execErr := r.pool.Exec(ctx,
			`UPDATE monitors SET last_checked_at = $1 WHERE id = $2`,
			utils.ToPgTimestamptz(checkedAt), utils.ToPgUUID(monitorID),
		)
		return execErr
	})
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}

	return nil
}

// UpdateAlertBookkeeping stamps the alert time and bumps the transition
// counter after a dispatched alert.
func (r *Repository) UpdateAlertBookkeeping(ctx context.Context, monitorID uuid.UUID, sentAt time.Time) error {
	const op string = "repo.monitor.update_alert_bookkeeping"

	err := r.dbRetry.Do(ctx, func() error {
		_, execErr := r.pool.Exec(ctx,
			`UPDATE monitors
			 SET last_alert_sent_at = $1, status_change_count = status_change_count + 1
			 WHERE id = $2`,
			utils.ToPgTimestamptz(sentAt), utils.ToPgUUID(monitorID),
		)
		return execErr
	})
	if err != nil {
		return utils.WrapRepoError(op, err, false, r.logger)
	}

	return nil
}
