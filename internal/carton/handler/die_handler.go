package handler

import (
	"strconv"

	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/gin-gonic/gin"
)

// DieHandler 刀模处理器
type DieHandler struct {
	svc *service.DieService
}

func NewDieHandler(svc *service.DieService) *DieHandler {
	return &DieHandler{svc: svc}
}

// Create 创建刀模
// POST /carton/dies
func (h *DieHandler) Create(c *gin.Context) {
	var req service.CreateDieReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	d, err := h.svc.Create(c.Request.Context(), req, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, d)
}

// Update 更新刀模
// PUT /carton/dies/:id
func (h *DieHandler) Update(c *gin.Context) {
	var req service.UpdateDieReq
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	d, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, d)
}

// Get 刀模详情
// GET /carton/dies/:id
func (h *DieHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, d)
}

// List 刀模列表
// GET /carton/dies?active_only=true
func (h *DieHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	items, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// UploadDesignFile 上传刀模图纸
// POST /carton/dies/:id/design-files
func (h *DieHandler) UploadDesignFile(c *gin.Context) {
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

	d, err := h.svc.UploadDesignFile(c.Request.Context(), c.Param("id"), file.Filename,
		src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, d)
}

// DesignFileURL 刀模图纸下载链接
// GET /carton/dies/:id/design-files/:index/url
func (h *DieHandler) DesignFileURL(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "图纸序号无效")
		return
	}

	u, err := h.svc.DesignFileURL(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"url": u})
}
