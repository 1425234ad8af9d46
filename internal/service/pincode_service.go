package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type pincodeRequestStore interface {
	Create(ctx context.Context, p *models.PincodeRequest) error
	List(ctx context.Context, page, limit int) ([]models.PincodeRequest, int, error)
	Demand(ctx context.Context, limit int) ([]repository.PincodeDemand, error)
}

// PincodeRequestInput asks the bakery to start delivering to a pincode.
type PincodeRequestInput struct {
	Pincode   string `json:"pincode" validate:"required,numeric,len=6"`
	Contact   string `json:"contact" validate:"required,max=100"`
	ProductID string `json:"productId"`
}

type PincodeService struct {
	repo pincodeRequestStore
}

func NewPincodeService(repo pincodeRequestStore) *PincodeService {
	return &PincodeService{repo: repo}
}

func (s *PincodeService) Request(ctx context.Context, in PincodeRequestInput) (*models.PincodeRequest, error) {
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	req := &models.PincodeRequest{
		ID:      utils.NewID(),
		Pincode: in.Pincode,
		Contact: strings.TrimSpace(in.Contact),
	}
	if in.ProductID != "" {
		req.ProductID = &in.ProductID
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	log.Info().Str("pincode", req.Pincode).Msg("delivery area requested")
	return req, nil
}

func (s *PincodeService) List(ctx context.Context, page, limit int) ([]models.PincodeRequest, int, error) {
	return s.repo.List(ctx, page, limit)
}

// Demand ranks the most requested pincodes.
func (s *PincodeService) Demand(ctx context.Context, limit int) ([]repository.PincodeDemand, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Demand(ctx, limit)
}
