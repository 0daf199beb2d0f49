package service

import (
	"context"
	"fmt"
	"io"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/google/uuid"
)

// DieService 刀模档案服务
type DieService struct {
	dieRepo *repository.DieRepository
	storage *StorageService
}

func NewDieService(repos *repository.Repositories, storage *StorageService) *DieService {
	return &DieService{
		dieRepo: repos.Die,
		storage: storage,
	}
}

// CreateDieReq 创建刀模请求
type CreateDieReq struct {
	Name             string  `json:"name" binding:"required"`
	Code             string  `json:"code"`
	MakerID          *string `json:"maker_id"`
	ProductID        *string `json:"product_id"`
	BladeLengthMM    float64 `json:"blade_length_mm"`
	BladeWidthMM     float64 `json:"blade_width_mm"`
	CavitiesPerSheet int     `json:"cavities_per_sheet"`
	HasLamination    bool    `json:"has_lamination"`
	DieCost          float64 `json:"die_cost"`
	Notes            string  `json:"notes"`
}

// Create 创建刀模
func (s *DieService) Create(ctx context.Context, req CreateDieReq, operatorID string) (*entity.Die, error) {
	cavities := req.CavitiesPerSheet
	if cavities < 1 {
		cavities = 1
	}

	d := &entity.Die{
		ID:               uuid.New().String()[:32],
		Name:             req.Name,
		Code:             req.Code,
		MakerID:          req.MakerID,
		ProductID:        req.ProductID,
		BladeLengthMM:    req.BladeLengthMM,
		BladeWidthMM:     req.BladeWidthMM,
		CavitiesPerSheet: cavities,
		HasLamination:    req.HasLamination,
		DieCost:          req.DieCost,
		IsActive:         true,
		Notes:            req.Notes,
		CreatedBy:        operatorID,
	}
	if err := s.dieRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("创建刀模失败: %w", err)
	}
	return d, nil
}

// UpdateDieReq 更新刀模请求，nil字段不动
type UpdateDieReq struct {
	Name             *string  `json:"name"`
	BladeLengthMM    *float64 `json:"blade_length_mm"`
	BladeWidthMM     *float64 `json:"blade_width_mm"`
	CavitiesPerSheet *int     `json:"cavities_per_sheet"`
	HasLamination    *bool    `json:"has_lamination"`
	DieCost          *float64 `json:"die_cost"`
	IsActive         *bool    `json:"is_active"`
	Notes            *string  `json:"notes"`
}

// Update 更新刀模
func (s *DieService) Update(ctx context.Context, id string, req UpdateDieReq) (*entity.Die, error) {
	d, err := s.dieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: 刀模不存在", repository.ErrNotFound)
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.BladeLengthMM != nil {
		d.BladeLengthMM = *req.BladeLengthMM
	}
	if req.BladeWidthMM != nil {
		d.BladeWidthMM = *req.BladeWidthMM
	}
	if req.CavitiesPerSheet != nil && *req.CavitiesPerSheet >= 1 {
		d.CavitiesPerSheet = *req.CavitiesPerSheet
	}
	if req.HasLamination != nil {
		d.HasLamination = *req.HasLamination
	}
	if req.DieCost != nil {
		d.DieCost = *req.DieCost
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}

	if err := s.dieRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("更新刀模失败: %w", err)
	}
	return d, nil
}

// Get 获取刀模详情
func (s *DieService) Get(ctx context.Context, id string) (*entity.Die, error) {
	return s.dieRepo.FindByID(ctx, id)
}

// List 刀模列表
func (s *DieService) List(ctx context.Context, activeOnly bool) ([]entity.Die, error) {
	return s.dieRepo.List(ctx, activeOnly)
}

// UploadDesignFile 上传刀模图纸，key追加到刀模档案
func (s *DieService) UploadDesignFile(ctx context.Context, id, fileName string, reader io.Reader, fileSize int64, contentType string) (*entity.Die, error) {
	d, err := s.dieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: 刀模不存在", repository.ErrNotFound)
	}

	key, err := s.storage.Upload(ctx, "dies", fileName, reader, fileSize, contentType)
	if err != nil {
		return nil, err
	}

	d.DesignFileKeys = append(d.DesignFileKeys, key)
	if err := s.dieRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("更新刀模失败: %w", err)
	}
	return d, nil
}

// DesignFileURL 生成刀模图纸下载链接
func (s *DieService) DesignFileURL(ctx context.Context, id string, index int) (string, error) {
	d, err := s.dieRepo.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("%w: 刀模不存在", repository.ErrNotFound)
	}
	if index < 0 || index >= len(d.DesignFileKeys) {
		return "", fmt.Errorf("%w: 图纸不存在", repository.ErrNotFound)
	}
	return s.storage.DownloadURL(ctx, d.DesignFileKeys[index])
}
