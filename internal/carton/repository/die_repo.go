package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"gorm.io/gorm"
)

// DieRepository 刀模仓库
type DieRepository struct {
	db *gorm.DB
}

func NewDieRepository(db *gorm.DB) *DieRepository {
	return &DieRepository{db: db}
}

// Create 创建刀模
func (r *DieRepository) Create(ctx context.Context, d *entity.Die) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// FindByID 根据ID查询刀模
func (r *DieRepository) FindByID(ctx context.Context, id string) (*entity.Die, error) {
	var d entity.Die
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List 查询刀模列表，activeOnly为真时只返回在用刀模
func (r *DieRepository) List(ctx context.Context, activeOnly bool) ([]entity.Die, error) {
	var items []entity.Die
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("created_at DESC").Find(&items).Error
	return items, err
}

// Update 更新刀模
func (r *DieRepository) Update(ctx context.Context, d *entity.Die) error {
	return r.db.WithContext(ctx).Save(d).Error
}
