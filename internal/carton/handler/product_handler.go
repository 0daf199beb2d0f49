package handler

import (
	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 客户产品处理器
type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create 创建客户产品
// POST /carton/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, p)
}

// Update 更新客户产品
// PUT /carton/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req service.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, p)
}

// Get 客户产品详情
// GET /carton/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, p)
}

// List 客户产品列表
// GET /carton/products?carton_type=&customer_id=
func (h *ProductHandler) List(c *gin.Context) {
	if customerID := c.Query("customer_id"); customerID != "" {
		items, err := h.svc.ListByCustomer(c.Request.Context(), customerID)
		if err != nil {
			RespondError(c, err)
			return
		}
		Success(c, gin.H{"items": items, "total": len(items)})
		return
	}

	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), c.Query("carton_type"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items, "total": total})
}

// AddCliche 给产品添加印版
// POST /carton/products/:id/cliches
func (h *ProductHandler) AddCliche(c *gin.Context) {
	var req service.CreateClicheReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	cliche, err := h.svc.AddCliche(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, cliche)
}

// ListCliches 产品的印版列表
// GET /carton/products/:id/cliches
func (h *ProductHandler) ListCliches(c *gin.Context) {
	items, err := h.svc.ListCliches(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// DeactivateCliche 停用印版
// POST /carton/cliches/:id/deactivate
func (h *ProductHandler) DeactivateCliche(c *gin.Context) {
	cliche, err := h.svc.DeactivateCliche(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, cliche)
}
