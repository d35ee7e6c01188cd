// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-backend/internal/domain/customer"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// Models returns every persisted model in dependency order. Shared
// with the test helpers so test databases match production schema.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&product.Category{},
		&product.Product{},
		&customer.Customer{},
		&order.Order{},
		&order.OrderDetail{},
		&payment.Transaction{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	for _, model := range Models() {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Order indexes driving the admin console filters
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_created ON orders(customer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_method ON orders(payment_method)",

		// Ledger lookups by order
		"CREATE INDEX IF NOT EXISTS idx_payment_transactions_order ON payment_transactions(order_id, created_at DESC)",

		// Catalog browsing
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Customer search in the admin order list
		"CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone)",
	}

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
		}
	}

	log.Println("✅ Database indexes created")
	return nil
}

// SeedInitialData inserts the records a fresh development environment
// needs: an admin account, the default categories and a few products.
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:        "admin@example.com",
		PasswordHash: string(hashedPassword),
		FirstName:    "Admin",
		LastName:     "User",
		IsActive:     true,
		IsAdmin:      true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	return nil
}

func (m *Migration) seedCatalog() error {
	var count int64
	m.db.Model(&product.Category{}).Count(&count)
	if count > 0 {
		return nil
	}

	categories := []product.Category{
		{Name: "Dien thoai", IsActive: true},
		{Name: "Phu kien", IsActive: true},
	}
	for i := range categories {
		if err := m.db.Create(&categories[i]).Error; err != nil {
			return err
		}
	}

	discount := int64(1190000)
	products := []product.Product{
		{
			Name:        "Smartphone X200",
			Description: "6.5 inch display, 128GB storage",
			Price:       5990000,
			CategoryID:  categories[0].ID,
			IsActive:    true,
		},
		{
			Name:          "Wireless Earbuds Pro",
			Description:   "Active noise cancelling, 24h battery",
			Price:         1490000,
			DiscountPrice: &discount,
			CategoryID:    categories[1].ID,
			IsActive:      true,
		},
		{
			Name:        "USB-C Fast Charger",
			Description: "45W GaN charger",
			Price:       390000,
			CategoryID:  categories[1].ID,
			IsActive:    true,
		},
	}
	for i := range products {
		if err := m.db.Create(&products[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d categories and %d products", len(categories), len(products))
	return nil
}
