// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles catalog reads. Full catalog management lives in the
// admin tooling; the storefront core only needs lookups.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
}

// ListResponse represents a page of products
type ListResponse struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// GetProducts retrieves active products with pagination
func (s *Service) GetProducts(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).
		Preload("Category").
		Where("is_active = ?", true)

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(req.Search)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &ListResponse{
		Products: products,
		Total:    total,
		Page:     req.Page,
		Limit:    req.Limit,
	}, nil
}

// GetProduct retrieves a single active product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	result := s.db.Preload("Category").Where("id = ? AND is_active = ?", id, true).First(&prod)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("product.GetProduct", "product not found")
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// GetCategories retrieves the active categories
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// GetActiveByIDs loads the active products for the given ids, keyed by id.
// Used by the cart store and the admin order flow to snapshot pricing.
func (s *Service) GetActiveByIDs(ids []uint) (map[uint]*Product, error) {
	var products []Product
	if err := s.db.Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	byID := make(map[uint]*Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}
