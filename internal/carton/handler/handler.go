package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/carton-pricing/internal/carton/repository"
	"github.com/bitfantasy/carton-pricing/internal/carton/service"
	"github.com/gin-gonic/gin"
)

// Handlers 报价处理器集合
type Handlers struct {
	Product  *ProductHandler
	Die      *DieHandler
	Inquiry  *InquiryHandler
	SubQuote *SubQuoteHandler
}

// NewHandlers 创建报价处理器集合
func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Product:  NewProductHandler(svcs.Product),
		Die:      NewDieHandler(svcs.Die),
		Inquiry:  NewInquiryHandler(svcs.Inquiry, svcs.Export, svcs.Storage),
		SubQuote: NewSubQuoteHandler(svcs.SubQuote),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 业务校验错误按400报，记录不存在按404报，其余按500报
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "记录不存在")
	case service.IsBusinessError(err):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
