package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/service"
	"github.com/ashwinyue/prts/internal/service/preference"
)

// PreferenceHandler 偏好处理器
type PreferenceHandler struct {
	svc *service.Services
}

// NewPreferenceHandler 创建偏好处理器
func NewPreferenceHandler(svc *service.Services) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// preferenceView 凭证只返回是否已配置
type preferenceView struct {
	preference.Preferences
	HasAPIKey bool `json:"hasApiKey"`
}

func viewOf(p preference.Preferences) preferenceView {
	return preferenceView{Preferences: p, HasAPIKey: p.HasAPIKey()}
}

// GetPreferences 获取偏好
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	success(c, viewOf(h.svc.Preferences.Get()))
}

// UpdatePreferences 更新偏好
func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	var req preference.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.svc.Preferences.Update(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, viewOf(p))
}
