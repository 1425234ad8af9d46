package service

import (
	"context"
	"strings"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type userStore interface {
	Upsert(ctx context.Context, u *models.User) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context, search string, page, limit int) ([]models.User, int, error)
}

// ProfileInput is what a signed-in customer can set about themselves.
type ProfileInput struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,min=7,max=20"`
}

// UserService keeps the customer directory that notification fan-out reads.
type UserService struct {
	repo userStore
}

func NewUserService(repo userStore) *UserService {
	return &UserService{repo: repo}
}

// SaveProfile registers the customer on first use and updates their details.
func (s *UserService) SaveProfile(ctx context.Context, uid string, in ProfileInput) (*models.User, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	u := &models.User{
		UID:   uid,
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: strings.TrimSpace(in.Phone),
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, uid string) (*models.User, error) {
	return s.repo.GetByUID(ctx, uid)
}

func (s *UserService) List(ctx context.Context, search string, page, limit int) ([]models.User, int, error) {
	return s.repo.List(ctx, strings.TrimSpace(search), page, limit)
}
