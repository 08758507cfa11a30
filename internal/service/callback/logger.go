// Package callback 记录对话模型调用日志
package callback

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// previewRunes 日志中回复预览的最大字符数
const previewRunes = 80

type startKey struct{}

// Logger 模型调用日志处理器
// 出错总是记录，Debug 模式下额外记录每次调用的耗时与回复预览
type Logger struct {
	EnableDebug bool
	now         func() time.Time
}

// NewLogger 创建日志回调处理器
func NewLogger(enableDebug bool) *Logger {
	return &Logger{EnableDebug: enableDebug, now: time.Now}
}

// OnStart 记录调用开始时间
func (l *Logger) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !l.EnableDebug {
		return ctx
	}
	if in := model.ConvCallbackInput(input); in != nil {
		log.Printf("[LLM] %s start: model=%s messages=%d", name(info), modelName(in.Config), len(in.Messages))
	}
	return context.WithValue(ctx, startKey{}, l.now())
}

// OnEnd 记录耗时与回复预览
func (l *Logger) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !l.EnableDebug {
		return ctx
	}
	out := model.ConvCallbackOutput(output)
	if out == nil {
		return ctx
	}

	var elapsed time.Duration
	if started, ok := ctx.Value(startKey{}).(time.Time); ok {
		elapsed = l.now().Sub(started)
	}
	log.Printf("[LLM] %s done: model=%s elapsed=%s reply=%q",
		name(info), modelName(out.Config), elapsed.Round(time.Millisecond), preview(out.Message))
	return ctx
}

// OnError 记录调用失败
func (l *Logger) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	log.Printf("Warning: [LLM] %s failed: %v", name(info), err)
	return ctx
}

// OnStartWithStreamInput 流式输入不做记录，直接关闭
func (l *Logger) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

// OnEndWithStreamOutput 流式输出不做记录，直接关闭
func (l *Logger) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}

// SetupGlobalCallbacks 注册全局回调
func SetupGlobalCallbacks(enableDebug bool) {
	callbacks.AppendGlobalHandlers(NewLogger(enableDebug))
	log.Printf("[LLM] Global callbacks registered (debug=%v)", enableDebug)
}

func name(info *callbacks.RunInfo) string {
	if info == nil {
		return "unknown"
	}
	if info.Name != "" {
		return info.Name
	}
	return info.Type
}

func modelName(cfg *model.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Model
}

// preview 截断回复，按字符而非字节计数
func preview(msg *schema.Message) string {
	if msg == nil {
		return ""
	}
	text := msg.Content
	if utf8.RuneCountInString(text) <= previewRunes {
		return text
	}
	return string([]rune(text)[:previewRunes]) + "..."
}
