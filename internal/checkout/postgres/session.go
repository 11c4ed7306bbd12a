package postgres

import (
	checkoutpkg "github.com/diogopimentels/capicash/internal/checkout"
	checkoutmodel "github.com/diogopimentels/capicash/internal/core/datamodel/checkout"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) checkoutpkg.SessionRepository {
	return &SessionRepository{
		db: db,
	}
}

func (r *SessionRepository) Create(session *checkoutmodel.CheckoutSession) error {
	return r.db.Create(session).Error
}

func (r *SessionRepository) GetByID(id string) (*checkoutmodel.CheckoutSession, error) {
	var session checkoutmodel.CheckoutSession
	err := r.db.First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByGatewayID(gatewayID string) (*checkoutmodel.CheckoutSession, error) {
	var session checkoutmodel.CheckoutSession
	err := r.db.Where("gateway_id = ?", gatewayID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}
