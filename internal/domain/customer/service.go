// internal/domain/customer/service.go
package customer

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles customer provisioning and lookups. Mutating methods
// take the caller's transaction handle so order creation and customer
// provisioning commit or roll back together.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new customer service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetOrCreate resolves the customer backing an authenticated identity,
// materializing one from the profile fields on first use.
func (s *Service) GetOrCreate(tx *gorm.DB, identity Identity) (*Customer, error) {
	if tx == nil {
		tx = s.db
	}

	var cust Customer
	err := tx.Where("user_id = ?", identity.UserID).First(&cust).Error
	if err == nil {
		return &cust, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	userID := identity.UserID
	cust = Customer{
		UserID: &userID,
		Name:   identity.Name,
		Email:  identity.Email,
		Phone:  identity.Phone,
	}

	if err := tx.Create(&cust).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return &cust, nil
}

// UpdateShipping stores the shipping fields on the customer record when
// they differ from what is already saved.
func (s *Service) UpdateShipping(tx *gorm.DB, cust *Customer, info ShippingInfo) error {
	if tx == nil {
		tx = s.db
	}

	updates := map[string]interface{}{}
	if info.Name != "" && info.Name != cust.Name {
		updates["name"] = info.Name
	}
	if info.Phone != "" && info.Phone != cust.Phone {
		updates["phone"] = info.Phone
	}
	if info.Address != "" && info.Address != cust.Address {
		updates["address"] = info.Address
	}
	if info.City != "" && info.City != cust.City {
		updates["city"] = info.City
	}
	if info.District != "" && info.District != cust.District {
		updates["district"] = info.District
	}
	if info.Ward != "" && info.Ward != cust.Ward {
		updates["ward"] = info.Ward
	}

	if len(updates) == 0 {
		return nil
	}

	if err := tx.Model(cust).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update customer shipping fields: %w", err)
	}

	return nil
}

// GetByID retrieves a customer by primary key
func (s *Service) GetByID(id uint) (*Customer, error) {
	var cust Customer
	result := s.db.First(&cust, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("customer.GetByID", "customer not found")
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", result.Error)
	}
	return &cust, nil
}

// GetByUserID retrieves the customer backing a user account
func (s *Service) GetByUserID(userID uint) (*Customer, error) {
	var cust Customer
	result := s.db.Where("user_id = ?", userID).First(&cust)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("customer.GetByUserID", "customer not found")
		}
		return nil, fmt.Errorf("failed to retrieve customer: %w", result.Error)
	}
	return &cust, nil
}
