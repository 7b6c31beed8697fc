package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/aclauto/internal/models"
)

// GormOrderStore is the Postgres-backed OrderStore.
type GormOrderStore struct {
	db *gorm.DB
}

// NewGormOrderStore constructs a GormOrderStore.
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func (s *GormOrderStore) GetOrder(id uuid.UUID) (*models.CarOrder, error) {
	var order models.CarOrder
	if err := s.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *GormOrderStore) SaveOrder(order *models.CarOrder) error {
	return s.db.Save(order).Error
}

func (s *GormOrderStore) DeleteOrder(id uuid.UUID) error {
	res := s.db.Delete(&models.CarOrder{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormConditionStore is the Postgres-backed ConditionStore. Stock moves are
// single conditional UPDATEs checked by affected-row count, so two
// concurrent approvals can never both take the last unit.
type GormConditionStore struct {
	db *gorm.DB
}

// NewGormConditionStore constructs a GormConditionStore.
func NewGormConditionStore(db *gorm.DB) *GormConditionStore {
	return &GormConditionStore{db: db}
}

func (s *GormConditionStore) GetCondition(id uuid.UUID) (*models.CarSaleCondition, error) {
	var cond models.CarSaleCondition
	if err := s.db.First(&cond, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cond, nil
}

// ReserveUnit takes one unit of stock, refusing rather than clamping when
// none is left.
func (s *GormConditionStore) ReserveUnit(id uuid.UUID) error {
	res := s.db.Model(&models.CarSaleCondition{}).
		Where("id = ? AND stock_quantity > 0", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// distinguish a missing condition from an exhausted one
		var count int64
		if err := s.db.Model(&models.CarSaleCondition{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrOutOfStock
	}
	return nil
}

// ReleaseUnit returns one previously reserved unit.
func (s *GormConditionStore) ReleaseUnit(id uuid.UUID) error {
	res := s.db.Model(&models.CarSaleCondition{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
