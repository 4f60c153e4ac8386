package service

import (
	"context"
	"errors"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

// ServiceInterface exposes account and session operations.
type ServiceInterface interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type userService struct {
	repo repository.RepositoryInterface
	jwt  *jwt.Manager
}

func NewUserService(repo repository.RepositoryInterface, manager *jwt.Manager) ServiceInterface {
	return &userService{
		repo: repo,
		jwt:  manager,
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	})
}

// Login verifies credentials and issues a signed token. A missing user
// and a wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user.ID.String(), user.Username)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{Token: token}, nil
}
