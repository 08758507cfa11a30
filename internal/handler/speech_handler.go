package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/service"
)

// SpeechHandler 语音合成处理器
type SpeechHandler struct {
	svc *service.Services
}

// NewSpeechHandler 创建语音处理器
func NewSpeechHandler(svc *service.Services) *SpeechHandler {
	return &SpeechHandler{svc: svc}
}

// SpeechRequest 语音合成请求
type SpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// Synthesize 合成语音，直接返回音频数据
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	audio, err := h.svc.Speech.Synthesize(c.Request.Context(), req.Text, req.VoiceID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.Data(http.StatusOK, audio.MIMEType, audio.Data)
}

// ListVoices 列出可选音色
func (h *SpeechHandler) ListVoices(c *gin.Context) {
	success(c, h.svc.Speech.Voices())
}
