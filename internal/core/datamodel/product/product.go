package product

import (
	"time"
)

// Product is the sellable item behind a shareable checkout link. Catalog
// management lives elsewhere; checkout only needs lookup and price.
type Product struct {
	ID          string    `gorm:"primaryKey;column:id"`
	SellerID    string    `gorm:"column:seller_id;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	RedirectURL string    `gorm:"column:redirect_url"`
	ContentURL  string    `gorm:"column:content_url"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Product) TableName() string {
	return "products"
}
