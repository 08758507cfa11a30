package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/model"
	"github.com/ashwinyue/prts/internal/service"
	"github.com/ashwinyue/prts/internal/service/operator"
	"github.com/ashwinyue/prts/internal/service/preference"
)

// OperatorHandler 干员处理器
type OperatorHandler struct {
	svc *service.Services
}

// NewOperatorHandler 创建干员处理器
func NewOperatorHandler(svc *service.Services) *OperatorHandler {
	return &OperatorHandler{svc: svc}
}

// ListOperators 列出干员
func (h *OperatorHandler) ListOperators(c *gin.Context) {
	success(c, h.svc.Operators.List())
}

// GetOperator 获取干员
func (h *OperatorHandler) GetOperator(c *gin.Context) {
	op, ok := h.svc.Operators.Get(c.Param("id"))
	if !ok {
		notFound(c, "operator not found")
		return
	}
	success(c, op)
}

// CreateOperator 新增自定义干员
func (h *OperatorHandler) CreateOperator(c *gin.Context) {
	var req operator.CreateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	customTTS := h.svc.Preferences.Get().TTSProvider == preference.TTSCustom
	op, err := h.svc.Operators.Create(c.Request.Context(), &req, customTTS)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, op)
}

// UpdateOperator 更新干员
func (h *OperatorHandler) UpdateOperator(c *gin.Context) {
	var req operator.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	op, err := h.svc.Operators.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, op)
}

// DeleteOperator 删除干员
func (h *OperatorHandler) DeleteOperator(c *gin.Context) {
	if !h.svc.Operators.Delete(c.Request.Context(), c.Param("id")) {
		notFound(c, "operator not found")
		return
	}
	success(c, nil)
}

// MemoryRequest 长期记忆请求
type MemoryRequest struct {
	Memory string `json:"memory"`
}

// ApplyMemory 用摘要替换干员长期记忆
func (h *OperatorHandler) ApplyMemory(c *gin.Context) {
	var req MemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := model.ParseContext(c.Param("id"))
	if ctx.IsGroup() {
		badRequest(c, "group channel has no operator memory")
		return
	}
	if !h.svc.Operators.ApplyMemory(c.Request.Context(), ctx, req.Memory) {
		notFound(c, "operator not found")
		return
	}

	op, _ := h.svc.Operators.Get(ctx.OperatorID)
	success(c, op)
}
