package handler

import (
	"fmt"
	"net/url"

	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/gin-gonic/gin"
)

// InquiryHandler 报价单处理器
type InquiryHandler struct {
	svc       *service.InquiryService
	exportSvc *service.ExportService
	storage   *service.StorageService
}

func NewInquiryHandler(svc *service.InquiryService, exportSvc *service.ExportService, storage *service.StorageService) *InquiryHandler {
	return &InquiryHandler{svc: svc, exportSvc: exportSvc, storage: storage}
}

// Create 创建报价单
// POST /carton/inquiries
func (h *InquiryHandler) Create(c *gin.Context) {
	var req service.CreateInquiryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	inq, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, inq)
}

// Defaults 按客户产品带出报价表单默认值
// GET /carton/inquiries/defaults?product_id=
func (h *InquiryHandler) Defaults(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		BadRequest(c, "缺少product_id参数")
		return
	}
	d, err := h.svc.Defaults(c.Request.Context(), productID)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, d)
}

// Update 修改报价单核算输入（对裱单价、手录展开尺寸等）
// PUT /carton/inquiries/:id
func (h *InquiryHandler) Update(c *gin.Context) {
	var req service.UpdateInquiryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	inq, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, inq)
}

// Get 报价单详情
// GET /carton/inquiries/:id
func (h *InquiryHandler) Get(c *gin.Context) {
	inq, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, inq)
}

// List 报价单列表
// GET /carton/inquiries?state=&customer_id=
func (h *InquiryHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), c.Query("state"), c.Query("customer_id"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items, "total": total})
}

// ListPending 待跟进报价单
// GET /carton/inquiries/pending
func (h *InquiryHandler) ListPending(c *gin.Context) {
	items, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// PendingCount 待跟进数量（看板角标轮询）
// GET /carton/inquiries/pending/count
func (h *InquiryHandler) PendingCount(c *gin.Context) {
	total, err := h.svc.PendingCount(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"count": total})
}

// Compute 核算报价
// POST /carton/inquiries/:id/compute
func (h *InquiryHandler) Compute(c *gin.Context) {
	inq, err := h.svc.Compute(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, inq)
}

// Send 发送报价给客户
// POST /carton/inquiries/:id/send
func (h *InquiryHandler) Send(c *gin.Context) {
	inq, err := h.svc.Send(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, inq)
}

// Accept 客户接受报价
// POST /carton/inquiries/:id/accept
func (h *InquiryHandler) Accept(c *gin.Context) {
	inq, err := h.svc.Accept(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, inq)
}

// Reject 客户拒绝报价
// POST /carton/inquiries/:id/reject
func (h *InquiryHandler) Reject(c *gin.Context) {
	var req service.RejectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	inq, err := h.svc.Reject(c.Request.Context(), c.Param("id"), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, inq)
}

// UploadRejectionAttachment 上传拒绝凭证附件，返回对象key，随Reject请求提交
// POST /carton/inquiries/rejection-attachments
func (h *InquiryHandler) UploadRejectionAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件")
		return
	}

	src, err := file.Open()
	if err != nil {
		InternalError(c, "读取上传文件失败")
		return
	}
	defer src.Close()

	key, err := h.storage.Upload(c.Request.Context(), "rejections", file.Filename,
		src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"key": key})
}

// Export 导出报价单xlsx
// GET /carton/inquiries/:id/export
func (h *InquiryHandler) Export(c *gin.Context) {
	f, fileName, err := h.exportSvc.ExportQuotation(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(fileName)))
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "导出失败")
	}
}
