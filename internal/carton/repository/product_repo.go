package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"gorm.io/gorm"
)

// ProductRepository 客户产品仓库
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create 创建客户产品
func (r *ProductRepository) Create(ctx context.Context, p *entity.CustomerProduct) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByID 根据ID查询客户产品（带刀模和印版）
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.CustomerProduct, error) {
	var p entity.CustomerProduct
	err := r.db.WithContext(ctx).
		Preload("Die").
		Preload("Cliches").
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCustomerID 查询客户的产品列表
func (r *ProductRepository) FindByCustomerID(ctx context.Context, customerID string) ([]entity.CustomerProduct, error) {
	var items []entity.CustomerProduct
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// List 查询产品列表，可按纸箱类型过滤
func (r *ProductRepository) List(ctx context.Context, cartonType string, offset, limit int) ([]entity.CustomerProduct, int64, error) {
	var items []entity.CustomerProduct
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CustomerProduct{})
	if cartonType != "" {
		query = query.Where("carton_type = ?", cartonType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, err
}

// Update 更新客户产品
func (r *ProductRepository) Update(ctx context.Context, p *entity.CustomerProduct) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// MarkProduced 标记产品已投产
func (r *ProductRepository) MarkProduced(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.CustomerProduct{}).
		Where("id = ?", id).
		Update("has_been_produced", true).Error
}
