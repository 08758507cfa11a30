// Package llm 创建对话模型，统一为 eino 的 BaseChatModel
package llm

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/components/model"
)

// ErrNoCredential 未配置调用凭证
var ErrNoCredential = errors.New("api key is required")

// MIME 类型
const (
	MIMEText = "text/plain"
	MIMEJSON = "application/json"
)

// Options 各实现共用的扩展选项
type Options struct {
	// ResponseMIMEType 期望的返回格式，群聊使用 JSON
	ResponseMIMEType string
}

// WithResponseMIMEType 指定返回格式
func WithResponseMIMEType(mime string) model.Option {
	return model.WrapImplSpecificOptFn(func(o *Options) {
		o.ResponseMIMEType = mime
	})
}

// GetOptions 解析扩展选项
func GetOptions(opts ...model.Option) *Options {
	return model.GetImplSpecificOptions(&Options{ResponseMIMEType: MIMEText}, opts...)
}

type credentialKey struct{}

// WithCredential 在请求上下文中携带调用凭证，优先于偏好与配置中的凭证
func WithCredential(ctx context.Context, apiKey string) context.Context {
	return context.WithValue(ctx, credentialKey{}, apiKey)
}

// CredentialFromContext 读取请求携带的凭证
func CredentialFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(credentialKey{}).(string); ok {
		return v
	}
	return ""
}
