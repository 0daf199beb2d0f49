package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/carton-pricing/internal/carton/entity"
	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/google/uuid"
)

// ProductService 客户产品服务，含产品上的印版档案维护
type ProductService struct {
	productRepo *repository.ProductRepository
	clicheRepo  *repository.ClicheRepository
	dieRepo     *repository.DieRepository
}

func NewProductService(repos *repository.Repositories) *ProductService {
	return &ProductService{
		productRepo: repos.Product,
		clicheRepo:  repos.Cliche,
		dieRepo:     repos.Die,
	}
}

// CreateProductReq 创建客户产品请求
type CreateProductReq struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Code       string `json:"code"`
	CartonType string `json:"carton_type" binding:"required"`

	LengthCM float64 `json:"length_cm"`
	WidthCM  float64 `json:"width_cm"`
	HeightCM float64 `json:"height_cm"`

	LayerCount string `json:"layer_count"`
	FluteStep  string `json:"flute_step"`
	PieceType  string `json:"piece_type"`
	DoorType   string `json:"door_type"`
	DoorCount  string `json:"door_count"`

	HasPrint            bool `json:"has_print"`
	IsDimensionBySample bool `json:"is_dimension_by_sample"`
	HasSample           bool `json:"has_sample"`

	NeedNewClicheDefault  bool `json:"need_new_cliche_default"`
	NeedStapleDefault     bool `json:"need_staple_default"`
	NeedHandleHoleDefault bool `json:"need_handle_hole_default"`
	NeedPunchDefault      bool `json:"need_punch_default"`
	NeedPalletWrapDefault bool `json:"need_pallet_wrap_default"`

	DefaultQuantity int     `json:"default_quantity"`
	SaleProductID   *string `json:"sale_product_id"`
	DieID           *string `json:"die_id"`
}

// Create 创建客户产品
func (s *ProductService) Create(ctx context.Context, req CreateProductReq, operatorID string) (*entity.CustomerProduct, error) {
	if req.DieID != nil {
		if _, err := s.dieRepo.FindByID(ctx, *req.DieID); err != nil {
			return nil, fmt.Errorf("%w: 刀模不存在", ErrMissingInput)
		}
	}

	quantity := req.DefaultQuantity
	if quantity <= 0 {
		quantity = 1000
	}

	p := &entity.CustomerProduct{
		ID:                    uuid.New().String()[:32],
		CustomerID:            req.CustomerID,
		Name:                  req.Name,
		Code:                  req.Code,
		CartonType:            req.CartonType,
		LengthCM:              req.LengthCM,
		WidthCM:               req.WidthCM,
		HeightCM:              req.HeightCM,
		LayerCount:            req.LayerCount,
		FluteStep:             req.FluteStep,
		PieceType:             req.PieceType,
		DoorType:              req.DoorType,
		DoorCount:             req.DoorCount,
		HasPrint:              req.HasPrint,
		IsDimensionBySample:   req.IsDimensionBySample,
		HasSample:             req.HasSample,
		NeedNewClicheDefault:  req.NeedNewClicheDefault,
		NeedStapleDefault:     req.NeedStapleDefault,
		NeedHandleHoleDefault: req.NeedHandleHoleDefault,
		NeedPunchDefault:      req.NeedPunchDefault,
		NeedPalletWrapDefault: req.NeedPalletWrapDefault,
		DefaultQuantity:       quantity,
		SaleProductID:         req.SaleProductID,
		DieID:                 req.DieID,
		CreatedBy:             operatorID,
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("创建客户产品失败: %w", err)
	}
	return p, nil
}

// UpdateProductReq 更新客户产品请求，nil字段不动
type UpdateProductReq struct {
	Name       *string `json:"name"`
	Code       *string `json:"code"`
	CartonType *string `json:"carton_type"`

	LengthCM *float64 `json:"length_cm"`
	WidthCM  *float64 `json:"width_cm"`
	HeightCM *float64 `json:"height_cm"`

	LayerCount *string `json:"layer_count"`
	FluteStep  *string `json:"flute_step"`
	PieceType  *string `json:"piece_type"`

	HasPrint *bool `json:"has_print"`

	NeedNewClicheDefault  *bool `json:"need_new_cliche_default"`
	NeedStapleDefault     *bool `json:"need_staple_default"`
	NeedHandleHoleDefault *bool `json:"need_handle_hole_default"`
	NeedPunchDefault      *bool `json:"need_punch_default"`
	NeedPalletWrapDefault *bool `json:"need_pallet_wrap_default"`

	DefaultQuantity *int    `json:"default_quantity"`
	SaleProductID   *string `json:"sale_product_id"`
	DieID           *string `json:"die_id"`
}

// Update 更新客户产品
func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductReq) (*entity.CustomerProduct, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Code != nil {
		p.Code = *req.Code
	}
	if req.CartonType != nil {
		p.CartonType = *req.CartonType
	}
	if req.LengthCM != nil {
		p.LengthCM = *req.LengthCM
	}
	if req.WidthCM != nil {
		p.WidthCM = *req.WidthCM
	}
	if req.HeightCM != nil {
		p.HeightCM = *req.HeightCM
	}
	if req.LayerCount != nil {
		p.LayerCount = *req.LayerCount
	}
	if req.FluteStep != nil {
		p.FluteStep = *req.FluteStep
	}
	if req.PieceType != nil {
		p.PieceType = *req.PieceType
	}
	if req.HasPrint != nil {
		p.HasPrint = *req.HasPrint
	}
	if req.NeedNewClicheDefault != nil {
		p.NeedNewClicheDefault = *req.NeedNewClicheDefault
	}
	if req.NeedStapleDefault != nil {
		p.NeedStapleDefault = *req.NeedStapleDefault
	}
	if req.NeedHandleHoleDefault != nil {
		p.NeedHandleHoleDefault = *req.NeedHandleHoleDefault
	}
	if req.NeedPunchDefault != nil {
		p.NeedPunchDefault = *req.NeedPunchDefault
	}
	if req.NeedPalletWrapDefault != nil {
		p.NeedPalletWrapDefault = *req.NeedPalletWrapDefault
	}
	if req.DefaultQuantity != nil {
		p.DefaultQuantity = *req.DefaultQuantity
	}
	if req.SaleProductID != nil {
		p.SaleProductID = req.SaleProductID
	}
	if req.DieID != nil {
		if _, err := s.dieRepo.FindByID(ctx, *req.DieID); err != nil {
			return nil, fmt.Errorf("%w: 刀模不存在", ErrMissingInput)
		}
		p.DieID = req.DieID
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("更新客户产品失败: %w", err)
	}
	return p, nil
}

// Get 获取客户产品详情
func (s *ProductService) Get(ctx context.Context, id string) (*entity.CustomerProduct, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List 客户产品列表
func (s *ProductService) List(ctx context.Context, cartonType string, page, pageSize int) ([]entity.CustomerProduct, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.List(ctx, cartonType, (page-1)*pageSize, pageSize)
}

// ListByCustomer 查询客户的产品
func (s *ProductService) ListByCustomer(ctx context.Context, customerID string) ([]entity.CustomerProduct, error) {
	return s.productRepo.FindByCustomerID(ctx, customerID)
}

// CreateClicheReq 创建印版请求
type CreateClicheReq struct {
	Name             string  `json:"name" binding:"required"`
	Color            string  `json:"color"`
	Side             string  `json:"side"`
	ClicheCost       float64 `json:"cliche_cost"`
	PrintCostPer1000 float64 `json:"print_cost_per_1000"`
	IsLaminate       bool    `json:"is_laminate"`
}

// AddCliche 给产品添加印版
func (s *ProductService) AddCliche(ctx context.Context, productID string, req CreateClicheReq) (*entity.Cliche, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("%w: 客户产品不存在", repository.ErrNotFound)
	}

	c := &entity.Cliche{
		ID:                uuid.New().String()[:32],
		CustomerProductID: productID,
		Name:              req.Name,
		Color:             req.Color,
		Side:              req.Side,
		ClicheCost:        req.ClicheCost,
		PrintCostPer1000:  req.PrintCostPer1000,
		IsLaminate:        req.IsLaminate,
		Active:            true,
	}
	if err := s.clicheRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("创建印版失败: %w", err)
	}
	return c, nil
}

// ListCliches 查询产品的印版
func (s *ProductService) ListCliches(ctx context.Context, productID string) ([]entity.Cliche, error) {
	return s.clicheRepo.FindByProductID(ctx, productID)
}

// DeactivateCliche 停用印版
func (s *ProductService) DeactivateCliche(ctx context.Context, clicheID string) (*entity.Cliche, error) {
	c, err := s.clicheRepo.FindByID(ctx, clicheID)
	if err != nil {
		return nil, fmt.Errorf("%w: 印版不存在", repository.ErrNotFound)
	}
	c.Active = false
	if err := s.clicheRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("更新印版失败: %w", err)
	}
	return c, nil
}
