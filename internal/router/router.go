package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/handler"
	"github.com/ashwinyue/prts/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.CredentialMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// Context 上下文（干员 ID 或 group）
		contexts := v1.Group("/contexts/:context")
		{
			contexts.GET("/sessions", h.Session.ListSessions)
			contexts.POST("/sessions", h.Session.CreateSession)
			contexts.POST("/resolve", h.Session.ResolveActive)
		}

		// Session 会话
		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:id", h.Session.GetSession)
			sessions.PUT("/:id", h.Session.RenameSession)
			sessions.DELETE("/:id", h.Session.DeleteSession)
			sessions.POST("/:id/messages", h.Session.SendMessage)
			sessions.GET("/:id/usage", h.Session.GetUsage)
			sessions.POST("/:id/summary", h.Session.Summarize)
		}
		v1.PUT("/session-menu", h.Session.SetMenu)

		// Operator 干员
		operators := v1.Group("/operators")
		{
			operators.GET("", h.Operator.ListOperators)
			operators.POST("", h.Operator.CreateOperator)
			operators.GET("/:id", h.Operator.GetOperator)
			operators.PUT("/:id", h.Operator.UpdateOperator)
			operators.DELETE("/:id", h.Operator.DeleteOperator)
			operators.PUT("/:id/memory", h.Operator.ApplyMemory)
		}

		// Group 群组频道
		group := v1.Group("/group/participants")
		{
			group.GET("", h.Group.ListParticipants)
			group.DELETE("", h.Group.DeselectAll)
			group.POST("/all", h.Group.SelectAll)
			group.POST("/:id/toggle", h.Group.ToggleParticipant)
		}

		// Preference 偏好
		v1.GET("/preferences", h.Preference.GetPreferences)
		v1.PUT("/preferences", h.Preference.UpdatePreferences)

		// Speech 语音
		v1.POST("/speech", h.Speech.Synthesize)
		v1.GET("/voices", h.Speech.ListVoices)
	}

	return r
}
