package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/anu-devcode/deploy-test-sub001/internal/apperr"
	"github.com/anu-devcode/deploy-test-sub001/internal/models"
	"github.com/anu-devcode/deploy-test-sub001/internal/repository"
)

type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Segment models.Segment
}

type CustomerService struct {
	tx     *Dispatcher
	logger zerolog.Logger
}

func NewCustomerService(tx *Dispatcher, logger zerolog.Logger) *CustomerService {
	if tx == nil {
		panic("customer service requires a dispatcher")
	}
	return &CustomerService{tx: tx, logger: logger.With().Str("service", "customers").Logger()}
}

// Register creates the caller's customer profile. A user has at most one
// profile per tenant.
func (s *CustomerService) Register(ctx context.Context, tenantID, userID string, in CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Unauthorized("unauthenticated", "authentication required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name_required", "name is required")
	}
	if in.Segment == "" {
		in.Segment = models.SegmentRetail
	}
	if !in.Segment.Valid() {
		return nil, invalid("invalid_segment", "segment must be RETAIL or BULK")
	}

	var out *models.Customer
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		c := &models.Customer{
			ID:        newID(),
			UserID:    userID,
			Name:      strings.TrimSpace(in.Name),
			Email:     strings.TrimSpace(in.Email),
			Phone:     strings.TrimSpace(in.Phone),
			Segment:   in.Segment,
			CreatedAt: b.at,
		}
		if err := repos.Customers.Create(ctx, c); err != nil {
			return classify(err, "customer")
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CustomerService) Me(ctx context.Context, tenantID, userID string) (*models.Customer, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	c, err := repos.Customers.GetByUserID(ctx, userID)
	return c, classify(err, "customer")
}

type ProductInput struct {
	CategoryID string
	Name       string
	Price      decimal.Decimal
	Stock      int
	IsActive   bool
}

type ProductService struct {
	tx     *Dispatcher
	logger zerolog.Logger
}

func NewProductService(tx *Dispatcher, logger zerolog.Logger) *ProductService {
	if tx == nil {
		panic("product service requires a dispatcher")
	}
	return &ProductService{tx: tx, logger: logger.With().Str("service", "products").Logger()}
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name_required", "name is required")
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return invalid("category_required", "category id is required")
	}
	if p.Price.IsNegative() {
		return invalid("invalid_price", "price cannot be negative")
	}
	if p.Stock < 0 {
		return invalid("invalid_stock", "stock cannot be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, tenantID string, in ProductInput) (*models.Product, error) {
	p := &models.Product{
		CategoryID: strings.TrimSpace(in.CategoryID),
		Name:       strings.TrimSpace(in.Name),
		Price:      in.Price.Round(2),
		Stock:      in.Stock,
		IsActive:   in.IsActive,
	}
	if err := validateProduct(*p); err != nil {
		return nil, err
	}
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		p.ID = newID()
		p.CreatedAt = b.at
		p.UpdatedAt = b.at
		return classify(repos.Products.Create(ctx, p), "product")
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get hides inactive products unless includeInactive is set.
func (s *ProductService) Get(ctx context.Context, tenantID, id string, includeInactive bool) (*models.Product, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	p, err := repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, "product")
	}
	if !p.IsActive && !includeInactive {
		return nil, apperr.NotFound("product_not_found", "product not found")
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context, tenantID string, activeOnly bool, page models.Page) ([]models.Product, error) {
	repos, err := s.tx.Scoped(tenantID)
	if err != nil {
		return nil, err
	}
	out, err := repos.Products.List(ctx, activeOnly, page)
	return out, classify(err, "product")
}

// Update changes the live product. Orders keep the prices they captured.
func (s *ProductService) Update(ctx context.Context, tenantID, id string, patch models.ProductPatch) (*models.Product, error) {
	var out *models.Product
	err := s.tx.Do(ctx, tenantID, func(repos *repository.Repositories, b *Batch) error {
		p, err := repos.Products.GetByID(ctx, id)
		if err != nil {
			return classify(err, "product")
		}
		if patch.CategoryID != nil {
			p.CategoryID = strings.TrimSpace(*patch.CategoryID)
		}
		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Price != nil {
			p.Price = patch.Price.Round(2)
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.IsActive != nil {
			p.IsActive = *patch.IsActive
		}
		if err := validateProduct(*p); err != nil {
			return err
		}
		p.UpdatedAt = b.at
		if err := repos.Products.Update(ctx, p); err != nil {
			return classify(err, "product")
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
