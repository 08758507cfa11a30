package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// ContentGenerator genai.Models 的最小接口
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig Gemini 对话模型配置
type GeminiConfig struct {
	Model       string
	Temperature *float32
	Timeout     time.Duration
}

// GeminiChatModel 基于 genai 的对话模型
type GeminiChatModel struct {
	models      ContentGenerator
	model       string
	temperature *float32
	timeout     time.Duration
}

// NewGenAIClient 创建 Gemini API 客户端
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoCredential
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

// NewGeminiChatModel 创建 Gemini 对话模型
func NewGeminiChatModel(models ContentGenerator, cfg *GeminiConfig) *GeminiChatModel {
	return &GeminiChatModel{
		models:      models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

// GetType 组件类型名，用于回调日志
func (m *GeminiChatModel) GetType() string {
	return "Gemini"
}

// IsCallbacksEnabled 由模型自身触发回调
func (m *GeminiChatModel) IsCallbacksEnabled() bool {
	return true
}

// Generate 实现 model.BaseChatModel
// system 消息合并为 SystemInstruction，assistant 消息映射为 model 角色
func (m *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (out *schema.Message, err error) {
	common := model.GetCommonOptions(&model.Options{
		Model:       &m.model,
		Temperature: m.temperature,
	}, opts...)
	ext := GetOptions(opts...)

	modelName := m.model
	if common.Model != nil && *common.Model != "" {
		modelName = *common.Model
	}

	ctx = callbacks.EnsureRunInfo(ctx, m.GetType(), components.ComponentOfChatModel)
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{
		Messages: input,
		Config:   &model.Config{Model: modelName},
	})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	system, contents := toContents(input)
	cfg := &genai.GenerateContentConfig{
		Temperature:      common.Temperature,
		ResponseMIMEType: ext.ResponseMIMEType,
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := m.models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	out = schema.AssistantMessage(responseText(resp), nil)
	callbacks.OnEnd(ctx, &model.CallbackOutput{
		Message: out,
		Config:  &model.Config{Model: modelName},
	})
	return out, nil
}

// Stream 实现 model.BaseChatModel，一次性返回完整回复
func (m *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toContents(input []*schema.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(input))
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

// responseText 拼接首个候选的全部文本片段
// 被安全策略拦截时没有候选，返回空串
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
