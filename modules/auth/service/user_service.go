package service

import (
	"context"

	coredto "admission-api/core/dto"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/params"
	"admission-api/modules/auth/dto"
	"admission-api/modules/auth/repository"
)

// UserService exposes the public user directory (counselor listing).
type UserService struct {
	repo repository.UserRepositoryInterface
}

func NewUserService(repo repository.UserRepositoryInterface) *UserService {
	return &UserService{repo: repo}
}

type UserServiceInterface interface {
	SelectCounselors(ctx context.Context, qp *params.QueryParams) (*coredto.Pagination[dto.UserProfile], *errors.AppError)
}

func (s *UserService) SelectCounselors(ctx context.Context, qp *params.QueryParams) (*coredto.Pagination[dto.UserProfile], *errors.AppError) {
	users, total, err := s.repo.SelectCounselors(ctx, qp)
	if err != nil {
		logger.Error("UserService:SelectCounselors:SelectCounselors:Error:", err)
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list counselors", err)
	}

	profiles := make([]dto.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, *toProfile(&users[i]))
	}
	return coredto.NewPagination(profiles, total, qp.PageNumber, qp.PageSize), nil
}
