package service

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type ProfileRepo interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
}

// ProfileService отдаёт публичный профиль для обогащения исходящих сообщений.
type ProfileService struct {
	repo ProfileRepo
}

func NewProfileService(repo ProfileRepo) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, id)
}
