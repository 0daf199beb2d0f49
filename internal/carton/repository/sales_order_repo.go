package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"gorm.io/gorm"
)

// SalesOrderRepository 销售订单仓库
type SalesOrderRepository struct {
	db *gorm.DB
}

func NewSalesOrderRepository(db *gorm.DB) *SalesOrderRepository {
	return &SalesOrderRepository{db: db}
}

// Create 创建销售订单（含订单行）
func (r *SalesOrderRepository) Create(ctx context.Context, tx *gorm.DB, so *entity.SalesOrder) error {
	return tx.WithContext(ctx).Create(so).Error
}

// FindByID 根据ID查询销售订单
func (r *SalesOrderRepository) FindByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&so).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &so, nil
}

// FindByInquiryID 根据报价单ID查询销售订单
func (r *SalesOrderRepository) FindByInquiryID(ctx context.Context, inquiryID string) (*entity.SalesOrder, error) {
	var so entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("inquiry_id = ?", inquiryID).
		First(&so).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &so, nil
}

// NextCode 生成当日流水号订单编号，如 SO-20260830-0007
func (r *SalesOrderRepository) NextCode(ctx context.Context, tx *gorm.DB) (string, error) {
	today := time.Now().Format("20060102")
	prefix := fmt.Sprintf("SO-%s-", today)

	var count int64
	err := tx.WithContext(ctx).
		Model(&entity.SalesOrder{}).
		Where("code LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
