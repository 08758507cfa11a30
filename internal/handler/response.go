package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/prts/internal/service/chat"
	"github.com/ashwinyue/prts/internal/service/llm"
	"github.com/ashwinyue/prts/internal/service/operator"
	"github.com/ashwinyue/prts/internal/service/preference"
	"github.com/ashwinyue/prts/internal/service/speech"
)

// Response 统一响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// success 成功响应 (200)
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// created 创建成功响应 (201)
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

// badRequest 400 错误响应
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: -1, Message: msg})
}

// notFound 404 错误响应
func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: -1, Message: msg})
}

// errorResponse 根据错误类型返回相应的错误响应
func errorResponse(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chat.ErrEmptyInput),
		errors.Is(err, chat.ErrEmptySession),
		errors.Is(err, speech.ErrEmptyText),
		errors.Is(err, preference.ErrInvalid),
		errors.Is(err, operator.ErrReservedID),
		errors.Is(err, llm.ErrNoCredential):
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrSessionNotFound),
		errors.Is(err, chat.ErrNoOperator),
		errors.Is(err, operator.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, operator.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, speech.ErrNoAudio):
		status = http.StatusBadGateway
	}
	c.JSON(status, Response{Code: -1, Message: err.Error()})
}
