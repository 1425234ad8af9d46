package service

import (
	"context"
	"errors"
	"slices"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type productStore interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	SetFeatured(ctx context.Context, id string, featured bool) error
}

type viewRecorder interface {
	Record(ctx context.Context, productID string) error
}

// DeliveryCheck answers whether a pincode is served.
type DeliveryCheck struct {
	Pincode     string `json:"pincode"`
	ProductID   string `json:"productId,omitempty"`
	Deliverable bool   `json:"deliverable"`
}

// ProductService serves the storefront catalog and the back-office product
// editor.
type ProductService struct {
	repo     productStore
	views    viewRecorder
	settings settingsProvider
}

// NewProductService builds the service. views may be nil, in which case
// product views are not counted.
func NewProductService(repo productStore, views viewRecorder, settings settingsProvider) *ProductService {
	return &ProductService{repo: repo, views: views, settings: settings}
}

// ListPublic lists active products. A pincode filter keeps products that
// deliver there, counting the store defaults for products without a list.
func (s *ProductService) ListPublic(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	f.IncludeInactive = false
	if f.Pincode != "" {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return nil, 0, err
		}
		f.PincodeDefault = slices.Contains(settings.DefaultPincodes, f.Pincode)
	}
	return s.repo.List(ctx, f)
}

// ListAdmin lists every product including inactive ones.
func (s *ProductService) ListAdmin(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	f.IncludeInactive = true
	f.Pincode = ""
	return s.repo.List(ctx, f)
}

// GetPublic returns an active product and counts the view.
func (s *ProductService) GetPublic(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, utils.ErrProductNotFound
	}
	if s.views != nil {
		if err := s.views.Record(ctx, id); err != nil {
			log.Warn().Err(err).Str("product_id", id).Msg("failed to record product view")
		}
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// CheckDelivery reports whether pincode is served, for one product when
// productID is set and for the store as a whole otherwise.
func (s *ProductService) CheckDelivery(ctx context.Context, pincode, productID string) (*DeliveryCheck, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := &DeliveryCheck{Pincode: pincode, ProductID: productID}
	if productID == "" {
		out.Deliverable = slices.Contains(settings.DefaultPincodes, pincode)
		return out, nil
	}
	p, err := s.GetPublic(ctx, productID)
	if err != nil {
		return nil, err
	}
	out.Deliverable = p.DeliversTo(pincode, settings.DefaultPincodes)
	return out, nil
}

// Create validates and stores a product from the admin form.
func (s *ProductService) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = utils.NewID()
	p.Views = 0
	p.ImportJobID = nil
	if err := prepareProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")
	return s.repo.GetByID(ctx, p.ID)
}

// Update replaces the editable fields of product id.
func (s *ProductService) Update(ctx context.Context, id string, p *models.Product) (*models.Product, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.Views = current.Views
	p.ImportJobID = current.ImportJobID
	if err := prepareProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteMany removes the listed products and reports how many existed.
func (s *ProductService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	log.Info().Int("requested", len(ids)).Int64("deleted", n).Msg("products bulk deleted")
	return n, nil
}

// Duplicate copies a product under a new id. The copy is not featured and
// starts with no views.
func (s *ProductService) Duplicate(ctx context.Context, id string) (*models.Product, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *src
	cp.Name = src.Name + " (Copy)"
	cp.Featured = false
	cp.Tags = slices.Clone(src.Tags)
	cp.DeliveryPincodes = slices.Clone(src.DeliveryPincodes)
	cp.SEOKeywords = slices.Clone(src.SEOKeywords)
	cp.Images = slices.Clone(src.Images)
	cp.Details = slices.Clone(src.Details)
	return s.Create(ctx, &cp)
}

// ToggleFeatured flips the featured flag and returns the product.
func (s *ProductService) ToggleFeatured(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetFeatured(ctx, id, !p.Featured); err != nil {
		return nil, err
	}
	p.Featured = !p.Featured
	return p, nil
}

// prepareProduct fills empty lists and checks the rules the import applies
// to the same fields.
func prepareProduct(p *models.Product) error {
	for _, list := range []*pq.StringArray{&p.Tags, &p.DeliveryPincodes, &p.SEOKeywords, &p.Images, &p.Details} {
		if *list == nil {
			*list = pq.StringArray{}
		}
	}
	if p.Currency == "" {
		p.Currency = models.CurrencyINR
	}

	var fields []validation.FieldError
	if err := validation.ValidateStruct(p); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			return err
		}
		fields = append(fields, verr.Fields...)
	}
	if p.MinOrder.Valid && p.MaxOrder.Valid && p.MinOrder.Decimal.GreaterThan(p.MaxOrder.Decimal) {
		fields = append(fields, validation.FieldError{Field: "minOrder", Tag: "ltefield", Param: "maxOrder", Message: "minOrder must not exceed maxOrder"})
	}
	if p.AvailableFrom != nil && p.AvailableTo != nil && p.AvailableFrom.After(*p.AvailableTo) {
		fields = append(fields, validation.FieldError{Field: "availableFrom", Tag: "ltefield", Param: "availableTo", Message: "availableFrom must not be after availableTo"})
	}
	if len(fields) > 0 {
		return &validation.Error{Fields: fields}
	}
	return nil
}
