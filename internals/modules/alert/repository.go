package alert

import (
	"context"
	"errors"

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

func (r *Repository) Insert(ctx context.Context, a Alert) (int64, error) {
	const op string = "repo.alert.insert"

	var id int64
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO alerts (monitor_id, reason, error_detail, triggered_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			utils.ToPgUUID(a.MonitorID), a.Reason, utils.ToPgText(a.ErrorDetail),
			utils.ToPgTimestamptz(a.TriggeredAt),
		)
		return row.Scan(&id)
	})
	if err != nil {
		return 0, utils.WrapRepoError(op, err, false, r.logger)
	}

	return id, nil
}

// ListByUser pages through alerts across all of the user's monitors,
// newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int32) ([]Alert, error) {
	const op string = "repo.alert.list_by_user"

	var alerts []Alert
	err := r.dbRetry.Do(ctx, func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT a.id, a.monitor_id, a.reason, a.error_detail, a.triggered_at
			 FROM alerts a
			 JOIN monitors m ON m.id = a.monitor_id
			 WHERE m.user_id = $1
			 ORDER BY a.triggered_at DESC, a.id DESC
			 LIMIT $2 OFFSET $3`,
			utils.ToPgUUID(userID), limit, offset,
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		alerts = alerts[:0]
		for rows.Next() {
			var a Alert
			var mID pgtype.UUID
			var detail pgtype.Text
			if scanErr := rows.Scan(&a.ID, &mID, &a.Reason, &detail, &a.TriggeredAt); scanErr != nil {
				return scanErr
			}
			a.MonitorID = utils.FromPgUUID(mID)
			a.ErrorDetail = utils.FromPgText(detail)
			alerts = append(alerts, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, utils.WrapRepoError(op, err, false, r.logger)
	}

	return alerts, nil
}

// Delete removes an alert only if it belongs to one of the user's monitors.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID, alertID int64) error {
	const op string = "repo.alert.delete"

	err := r.dbRetry.Do(ctx, func() error {
		tag, execErr := r.pool.Exec(ctx,
			`DELETE FROM alerts a
			 USING monitors m
			 WHERE a.id = $1 AND a.monitor_id = m.id AND m.user_id = $2`,
			alertID, utils.ToPgUUID(userID),
		)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &apperror.Error{
			Kind:    apperror.NotFound,
			Op:      op,
			Message: "alert not found",
		}
	}

	return utils.WrapRepoError(op, err, false, r.logger)
}
