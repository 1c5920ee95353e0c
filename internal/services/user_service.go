package services

import (
	"verimail/internal/models"
	"verimail/internal/repositories"
)

type UserService interface {
	ListUsers() ([]*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListUsers() ([]*models.User, error) {
	return s.repo.List()
}
