package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/capitlshop/storefront-backend/pkg/db/models"
)

// Repository exposes catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindProductByID loads one active product with its category.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = TRUE", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListCategories returns every browse category in id order.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindCategoryByID loads one category.
func (r *Repository) FindCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

type listProductsParams struct {
	CategoryID    int
	MinPriceCents *int
	MaxPriceCents *int
}

// ListProductsByCategory returns active products within the optional price
// band, newest first.
func (r *Repository) ListProductsByCategory(ctx context.Context, params listProductsParams) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ? AND is_active = TRUE", params.CategoryID)
	if params.MinPriceCents != nil {
		query = query.Where("price_cents >= ?", *params.MinPriceCents)
	}
	if params.MaxPriceCents != nil {
		query = query.Where("price_cents <= ?", *params.MaxPriceCents)
	}

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
