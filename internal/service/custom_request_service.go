package service

import (
	"context"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/sse"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type customRequestStore interface {
	Create(ctx context.Context, req *models.CustomRequest) error
	GetByID(ctx context.Context, id string) (*models.CustomRequest, error)
	List(ctx context.Context, status models.CustomRequestStatus, page, limit int) ([]models.CustomRequest, int, error)
	UpdateReview(ctx context.Context, req *models.CustomRequest) error
}

// CustomRequestInput is a customer's bespoke cake enquiry.
type CustomRequestInput struct {
	UserID          *string             `json:"-"`
	Name            string              `json:"name" validate:"required"`
	Phone           string              `json:"phone" validate:"required,min=7,max=20"`
	Email           string              `json:"email" validate:"omitempty,email"`
	Occasion        string              `json:"occasion" validate:"max=100"`
	Flavor          string              `json:"flavor" validate:"max=100"`
	WeightKg        decimal.NullDecimal `json:"weightKg" validate:"omitempty,gt=0"`
	DesignNotes     string              `json:"designNotes" validate:"required,max=2000"`
	ReferenceImages []string            `json:"referenceImages" validate:"max=5,dive,http_url"`
	DeliveryDate    string              `json:"deliveryDate" validate:"omitempty,datetime=2006-01-02"`
	Pincode         string              `json:"pincode"`
	Budget          decimal.NullDecimal `json:"budget" validate:"omitempty,gt=0"`
}

// CustomRequestReview is the back-office answer to a request.
type CustomRequestReview struct {
	Status      models.CustomRequestStatus `json:"status" validate:"required"`
	QuotedPrice decimal.NullDecimal        `json:"quotedPrice" validate:"omitempty,gt=0"`
	AdminNotes  string                     `json:"adminNotes" validate:"max=2000"`
}

type CustomRequestService struct {
	repo     customRequestStore
	notifier sse.Notifier
}

func NewCustomRequestService(repo customRequestStore, notifier sse.Notifier) *CustomRequestService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &CustomRequestService{repo: repo, notifier: notifier}
}

// Submit records a new request and alerts the admin feed.
func (s *CustomRequestService) Submit(ctx context.Context, in CustomRequestInput) (*models.CustomRequest, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	req := &models.CustomRequest{
		ID:              utils.NewID(),
		UserID:          in.UserID,
		Name:            strings.TrimSpace(in.Name),
		Phone:           strings.TrimSpace(in.Phone),
		Email:           strings.TrimSpace(in.Email),
		Occasion:        in.Occasion,
		Flavor:          in.Flavor,
		WeightKg:        in.WeightKg,
		DesignNotes:     strings.TrimSpace(in.DesignNotes),
		ReferenceImages: pq.StringArray(nonNil(in.ReferenceImages)),
		Pincode:         in.Pincode,
		Budget:          in.Budget,
		Status:          models.CustomRequestPending,
	}
	if in.DeliveryDate != "" {
		d, err := time.Parse(dateLayout, in.DeliveryDate)
		if err != nil {
			return nil, invalid("deliveryDate", "datetime", "deliveryDate must be YYYY-MM-DD")
		}
		req.DeliveryDate = &d
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	log.Info().Str("request_id", req.ID).Str("occasion", req.Occasion).Msg("custom cake request received")
	s.notifier.NotifyCustomRequestCreated(req)
	return req, nil
}

func (s *CustomRequestService) Get(ctx context.Context, id string) (*models.CustomRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CustomRequestService) List(ctx context.Context, status models.CustomRequestStatus, page, limit int) ([]models.CustomRequest, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, invalid("status", "oneof", "status must be one of pending, reviewing, quoted, accepted, rejected")
	}
	return s.repo.List(ctx, status, page, limit)
}

// Review updates status, quote and notes. A quoted request needs a price.
func (s *CustomRequestService) Review(ctx context.Context, id string, in CustomRequestReview) (*models.CustomRequest, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, invalid("status", "oneof", "status must be one of pending, reviewing, quoted, accepted, rejected")
	}
	if in.Status == models.CustomRequestQuoted && !in.QuotedPrice.Valid {
		return nil, invalid("quotedPrice", "required", "quotedPrice is required when quoting")
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Status = in.Status
	if in.QuotedPrice.Valid {
		req.QuotedPrice = in.QuotedPrice
	}
	req.AdminNotes = in.AdminNotes
	if err := s.repo.UpdateReview(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
