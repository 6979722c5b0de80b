package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/capitlshop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

// Service exposes storefront catalog reads.
type Service interface {
	GetProduct(ctx context.Context, id string) (*ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListProductsByCategory(ctx context.Context, categoryID int, filter PriceFilter) ([]ProductDTO, error)
}

// PriceFilter narrows a category listing to a price band. Bounds are
// inclusive and optional.
type PriceFilter struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// ProductDTO is the catalog read model returned to callers.
type ProductDTO struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category,omitempty"`
}

// CategoryDTO is one browse category.
type CategoryDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type repository interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategoryByID(ctx context.Context, id int) (*models.Category, error)
	ListProductsByCategory(ctx context.Context, params listProductsParams) ([]models.Product, error)
}

type service struct {
	repo repository
}

// NewService constructs a catalog service instance.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}

	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	dto := toProductDTO(product)
	return &dto, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}

	out := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, CategoryDTO{ID: category.ID, Name: category.Name})
	}
	return out, nil
}

func (s *service) ListProductsByCategory(ctx context.Context, categoryID int, filter PriceFilter) ([]ProductDTO, error) {
	if filter.Min != nil && filter.Max != nil && filter.Min.GreaterThan(*filter.Max) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min price exceeds max price")
	}

	if _, err := s.repo.FindCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}

	params := listProductsParams{CategoryID: categoryID}
	if filter.Min != nil {
		params.MinPriceCents = intPtr(toCents(*filter.Min))
	}
	if filter.Max != nil {
		params.MaxPriceCents = intPtr(toCents(*filter.Max))
	}

	products, err := s.repo.ListProductsByCategory(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	out := make([]ProductDTO, 0, len(products))
	for _, product := range products {
		out = append(out, toProductDTO(&product))
	}
	return out, nil
}

func toProductDTO(product *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          product.ID.String(),
		Title:       product.Title,
		Description: product.Description,
		Price:       decimal.New(int64(product.PriceCents), -2),
		Image:       product.Image,
	}
	if product.Category != nil {
		dto.Category = product.Category.Name
	}
	return dto
}

func toCents(price decimal.Decimal) int {
	return int(price.Mul(decimal.NewFromInt(100)).IntPart())
}

func intPtr(v int) *int {
	return &v
}
