package user

import (
	"context"
	"errors"

	"apiwatch/pkg/apperror"
	"apiwatch/pkg/retry"
	"apiwatch/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) CreateUser(ctx context.Context, cmd CreateUserCmd) (uuid.UUID, error) {
	const op string = "repo.user.create_user"

	var id pgtype.UUID
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
			cmd.Name, cmd.Email, cmd.PasswordHash,
		)
		return row.Scan(&id)
	})
	if err == nil {
		return utils.FromPgUUID(id), nil
	}

	// unique constraint on email -> conflict, kept out of the generic wrapper
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return uuid.Nil, &apperror.Error{
			Kind:    apperror.AlreadyExists,
			Op:      op,
			Message: "user already exists",
		}
	}

	return uuid.Nil, utils.WrapRepoError(op, err, false, r.logger)
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	const op string = "repo.user.get_user_by_id"

	var u User
	var id pgtype.UUID
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash FROM users WHERE id = $1`,
			utils.ToPgUUID(userID),
		)
		return row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash)
	})
	if err != nil {
		return User{}, utils.WrapRepoError(op, err, true, r.logger)
	}

	u.ID = utils.FromPgUUID(id)
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op string = "repo.user.get_user_by_email"

	var u User
	var id pgtype.UUID
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash FROM users WHERE email = $1`,
			email,
		)
		return row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash)
	})
	if err != nil {
		return User{}, utils.WrapRepoError(op, err, true, r.logger)
	}

	u.ID = utils.FromPgUUID(id)
	return u, nil
}

// GetEmailByMonitorID resolves a monitor's owner address for the alert
// dispatcher. Empty string with nil error means the owner has no address
// on file, which the dispatcher treats as a quiet no-op.
func (r *Repository) GetEmailByMonitorID(ctx context.Context, monitorID uuid.UUID) (string, error) {
	const op string = "repo.user.get_email_by_monitor_id"

	var email pgtype.Text
	err := r.dbRetry.Do(ctx, func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT u.email
			 FROM users u
			 JOIN monitors m ON m.user_id = u.id
			 WHERE m.id = $1`,
			utils.ToPgUUID(monitorID),
		)
		return row.Scan(&email)
	})
	if err != nil {
		return "", utils.WrapRepoError(op, err, true, r.logger)
	}

	return utils.FromPgText(email), nil
}
