package postgres

import (
	checkoutpkg "github.com/diogopimentels/capicash/internal/checkout"
	productmodel "github.com/diogopimentels/capicash/internal/core/datamodel/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) checkoutpkg.ProductRepository {
	return &ProductRepository{
		db: db,
	}
}

func (r *ProductRepository) GetByID(id string) (*productmodel.Product, error) {
	var product productmodel.Product
	err := r.db.First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
