package user

import (
	"context"

	"apiwatch/internals/security"
	"apiwatch/pkg/apperror"

	"github.com/google/uuid"
)

type Service struct {
	repo     *Repository
	tokenSvc *security.TokenService
}

func NewService(repo *Repository, tokenSvc *security.TokenService) *Service {
	return &Service{
		repo:     repo,
		tokenSvc: tokenSvc,
	}
}

func (s *Service) Register(ctx context.Context, data CreateUserCmd) (uuid.UUID, error) {
	const op string = "service.user.register"

	passwordHash, err := security.HashPassword(data.PasswordHash)
	if err != nil {
		return uuid.Nil, apperror.New(apperror.Internal, op, err)
	}

	data.PasswordHash = passwordHash
	return s.repo.CreateUser(ctx, data)
}

func (s *Service) LogIn(ctx context.Context, cmd LogInUserCmd) (LogInUserResult, error) {
	const op string = "service.user.log_in"

	u, err := s.repo.GetUserByEmail(ctx, cmd.Email)
	if err != nil {
		if apperror.IsKind(err, apperror.NotFound) {
			return LogInUserResult{}, &apperror.Error{
				Kind:    apperror.Unauthorised,
				Op:      op,
				Message: "invalid credentials",
			}
		}
		return LogInUserResult{}, err
	}

	ok, err := security.ComparePassword(cmd.Password, u.PasswordHash)
	if err != nil {
		return LogInUserResult{}, apperror.New(apperror.Internal, op, err)
	}
	if !ok {
		return LogInUserResult{}, &apperror.Error{
			Kind:    apperror.Unauthorised,
			Op:      op,
			Message: "invalid credentials",
		}
	}

	token, err := s.tokenSvc.GenerateAccessToken(security.RequestClaims{
		UserID: u.ID.String(),
		Email:  u.Email,
	})
	if err != nil {
		return LogInUserResult{}, apperror.New(apperror.Internal, op, err)
	}

	return LogInUserResult{
		UserID:      u.ID,
		AccessToken: token,
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
