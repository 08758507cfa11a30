package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/model"
	"github.com/ashwinyue/prts/internal/service"
	"github.com/ashwinyue/prts/internal/service/chat"
)

// SessionHandler 会话处理器
type SessionHandler struct {
	svc *service.Services
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(svc *service.Services) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// parseContext 解析路径中的上下文，"group" 表示群组频道
// 单人上下文的干员必须存在于目录中
func (h *SessionHandler) parseContext(c *gin.Context) (model.Context, bool) {
	raw := strings.TrimSpace(c.Param("context"))
	if raw == "" {
		badRequest(c, "context is required")
		return model.Context{}, false
	}
	ctx := model.ParseContext(raw)
	if !ctx.IsGroup() {
		if _, ok := h.svc.Operators.Get(ctx.OperatorID); !ok {
			notFound(c, "operator not found")
			return model.Context{}, false
		}
	}
	return ctx, true
}

// ListSessions 列出上下文的会话
func (h *SessionHandler) ListSessions(c *gin.Context) {
	ctx, ok := h.parseContext(c)
	if !ok {
		return
	}

	success(c, gin.H{
		"active":    h.svc.Sessions.Active(ctx),
		"sessions":  h.svc.Sessions.List(ctx),
		"menu_open": h.svc.Sessions.MenuOpen(),
	})
}

// CreateSession 创建会话
func (h *SessionHandler) CreateSession(c *gin.Context) {
	ctx, ok := h.parseContext(c)
	if !ok {
		return
	}

	id := h.svc.Sessions.Create(c.Request.Context(), ctx)
	sess, _ := h.svc.Sessions.Get(id)
	created(c, sess)
}

// ResolveRequest 解析当前会话请求
type ResolveRequest struct {
	CurrentSessionID string `json:"current_session_id"`
}

// ResolveActive 解析上下文的当前会话，切换上下文后调用
func (h *SessionHandler) ResolveActive(c *gin.Context) {
	ctx, ok := h.parseContext(c)
	if !ok {
		return
	}

	var req ResolveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	id := h.svc.Sessions.ResolveActive(c.Request.Context(), ctx, req.CurrentSessionID)
	sess, _ := h.svc.Sessions.Get(id)
	success(c, sess)
}

// GetSession 获取会话
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess, ok := h.svc.Sessions.Get(c.Param("id"))
	if !ok {
		notFound(c, "session not found")
		return
	}
	success(c, sess)
}

// RenameRequest 重命名请求
type RenameRequest struct {
	Title string `json:"title"`
}

// RenameSession 重命名会话
func (h *SessionHandler) RenameSession(c *gin.Context) {
	id := c.Param("id")
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if _, ok := h.svc.Sessions.Get(id); !ok {
		notFound(c, "session not found")
		return
	}
	if !h.svc.Sessions.Rename(c.Request.Context(), id, req.Title) {
		badRequest(c, "title must not be blank")
		return
	}

	sess, _ := h.svc.Sessions.Get(id)
	success(c, sess)
}

// DeleteSession 删除会话，返回所属上下文新的当前会话
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	sess, ok := h.svc.Sessions.Get(id)
	if !ok {
		notFound(c, "session not found")
		return
	}

	h.svc.Sessions.Delete(c.Request.Context(), id)
	success(c, gin.H{
		"deleted": id,
		"active":  h.svc.Sessions.Active(sess.Context()),
	})
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage 发送消息并返回回复
func (h *SessionHandler) SendMessage(c *gin.Context) {
	id := c.Param("id")
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	replies, err := h.svc.Chat.Send(c.Request.Context(), id, req.Text)
	if err != nil {
		errorResponse(c, err)
		return
	}

	sess, _ := h.svc.Sessions.Get(id)
	success(c, gin.H{
		"messages": replies,
		"usage":    h.svc.Meter.Measure(sess),
	})
}

// GetUsage 获取会话上下文用量
func (h *SessionHandler) GetUsage(c *gin.Context) {
	sess, ok := h.svc.Sessions.Get(c.Param("id"))
	if !ok {
		notFound(c, "session not found")
		return
	}
	success(c, h.svc.Meter.Measure(sess))
}

// SummaryRequest 摘要请求
type SummaryRequest struct {
	Apply bool `json:"apply"` // 同时写入干员长期记忆
}

// Summarize 生成会话摘要
func (h *SessionHandler) Summarize(c *gin.Context) {
	id := c.Param("id")
	var req SummaryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	summary, err := h.svc.Chat.Summarize(c.Request.Context(), id)
	if errors.Is(err, chat.ErrSummaryFailed) {
		// 返回本地化失败提示供展示，不写入记忆
		success(c, gin.H{
			"summary": summary,
			"applied": false,
			"failed":  true,
		})
		return
	}
	if err != nil {
		errorResponse(c, err)
		return
	}

	applied := false
	if req.Apply && summary != "" {
		if applied, err = h.svc.Chat.ApplySummary(c.Request.Context(), id, summary); err != nil {
			errorResponse(c, err)
			return
		}
	}

	success(c, gin.H{
		"summary": summary,
		"applied": applied,
		"failed":  false,
	})
}

// MenuRequest 会话菜单状态
type MenuRequest struct {
	Open bool `json:"open"`
}

// SetMenu 展开或收起会话选择菜单
func (h *SessionHandler) SetMenu(c *gin.Context) {
	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.svc.Sessions.SetMenuOpen(req.Open)
	success(c, gin.H{"menu_open": h.svc.Sessions.MenuOpen()})
}
