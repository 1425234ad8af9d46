package service

import (
	"context"
	"strings"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type newsletterStore interface {
	Subscribe(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page, limit int) ([]models.NewsletterSubscriber, int, error)
}

type NewsletterService struct {
	repo newsletterStore
}

func NewNewsletterService(repo newsletterStore) *NewsletterService {
	return &NewsletterService{repo: repo}
}

// Subscribe adds email. Subscribing twice is not an error; the result
// reports whether the address was new.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (bool, error) {
	in := struct {
		Email string `json:"email" validate:"required,email"`
	}{strings.TrimSpace(email)}
	if err := validation.ValidateStruct(in); err != nil {
		return false, err
	}
	return s.repo.Subscribe(ctx, in.Email)
}

func (s *NewsletterService) List(ctx context.Context, page, limit int) ([]models.NewsletterSubscriber, int, error) {
	return s.repo.List(ctx, page, limit)
}
