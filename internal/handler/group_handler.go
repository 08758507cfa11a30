package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/service"
)

// GroupHandler 群组频道处理器
type GroupHandler struct {
	svc *service.Services
}

// NewGroupHandler 创建群组处理器
func NewGroupHandler(svc *service.Services) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// ListParticipants 列出参与者
func (h *GroupHandler) ListParticipants(c *gin.Context) {
	success(c, gin.H{
		"ids":       h.svc.Roster.IDs(),
		"operators": h.svc.Roster.Participants(h.svc.Operators),
	})
}

// ToggleParticipant 切换干员参与状态
func (h *GroupHandler) ToggleParticipant(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.svc.Operators.Get(id); !ok {
		notFound(c, "operator not found")
		return
	}

	joined := h.svc.Roster.Toggle(c.Request.Context(), id)
	success(c, gin.H{
		"id":     id,
		"joined": joined,
		"ids":    h.svc.Roster.IDs(),
	})
}

// SelectAll 全部干员加入
func (h *GroupHandler) SelectAll(c *gin.Context) {
	success(c, gin.H{"ids": h.svc.Roster.SelectAll(c.Request.Context(), h.svc.Operators)})
}

// DeselectAll 清空参与者
func (h *GroupHandler) DeselectAll(c *gin.Context) {
	h.svc.Roster.DeselectAll(c.Request.Context())
	success(c, gin.H{"ids": []string{}})
}
