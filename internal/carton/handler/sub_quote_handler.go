package handler

import (
	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/gin-gonic/gin"
)

// SubQuoteHandler 分项询价处理器
type SubQuoteHandler struct {
	svc *service.SubQuoteService
}

func NewSubQuoteHandler(svc *service.SubQuoteService) *SubQuoteHandler {
	return &SubQuoteHandler{svc: svc}
}

// ListByInquiry 报价单的分项询价
// GET /carton/inquiries/:id/sub-quotes
func (h *SubQuoteHandler) ListByInquiry(c *gin.Context) {
	items, err := h.svc.ListByInquiry(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// MarkSent 分项询价发给供应商
// POST /carton/sub-quotes/:id/send
func (h *SubQuoteHandler) MarkSent(c *gin.Context) {
	var req service.MarkSentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	sq, err := h.svc.MarkSent(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sq)
}

// RecordCost 记录供应商回价
// POST /carton/sub-quotes/:id/cost
func (h *SubQuoteHandler) RecordCost(c *gin.Context) {
	var req service.RecordCostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	sq, err := h.svc.RecordCost(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sq)
}

// Approve 确认分项回价
// POST /carton/sub-quotes/:id/approve
func (h *SubQuoteHandler) Approve(c *gin.Context) {
	sq, err := h.svc.Approve(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sq)
}
