package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"gorm.io/gorm"
)

// ClicheRepository 印版仓库
type ClicheRepository struct {
	db *gorm.DB
}

func NewClicheRepository(db *gorm.DB) *ClicheRepository {
	return &ClicheRepository{db: db}
}

// Create 创建印版
func (r *ClicheRepository) Create(ctx context.Context, c *entity.Cliche) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID 根据ID查询印版
func (r *ClicheRepository) FindByID(ctx context.Context, id string) (*entity.Cliche, error) {
	var c entity.Cliche
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByProductID 查询产品的印版列表
func (r *ClicheRepository) FindByProductID(ctx context.Context, productID string) ([]entity.Cliche, error) {
	var items []entity.Cliche
	err := r.db.WithContext(ctx).
		Where("customer_product_id = ?", productID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Update 更新印版
func (r *ClicheRepository) Update(ctx context.Context, c *entity.Cliche) error {
	return r.db.WithContext(ctx).Save(c).Error
}
