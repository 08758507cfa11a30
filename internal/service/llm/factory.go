package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"

	"github.com/ashwinyue/prts/internal/config"
)

// GeneratorFunc 按凭证创建 genai 内容生成器
type GeneratorFunc func(ctx context.Context, apiKey string) (ContentGenerator, error)

// Factory 按凭证创建对话模型
// 凭证可在运行时通过偏好设置修改，因此不在启动时固定
// 偏好或配置中的凭证只缓存最近一个客户端，请求头携带的凭证每次新建且不保留
type Factory struct {
	cfg          config.AIConfig
	newGenerator GeneratorFunc

	mu        sync.Mutex
	genKey    string
	generator ContentGenerator
	openaiKey string
	openai    model.BaseChatModel
}

// NewFactory 创建模型工厂
func NewFactory(cfg config.AIConfig) *Factory {
	return NewFactoryWithGenerator(cfg, func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		client, err := NewGenAIClient(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return client.Models, nil
	})
}

// NewFactoryWithGenerator 使用自定义生成器创建工厂
func NewFactoryWithGenerator(cfg config.AIConfig, fn GeneratorFunc) *Factory {
	return &Factory{
		cfg:          cfg,
		newGenerator: fn,
	}
}

// Provider 当前对话提供方
func (f *Factory) Provider() string {
	return f.cfg.Provider
}

// ChatModel 对话使用的模型
func (f *Factory) ChatModel(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	return f.build(ctx, apiKey, f.cfg.Gemini.ChatModel)
}

// SummaryModel 摘要使用的模型
func (f *Factory) SummaryModel(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	return f.build(ctx, apiKey, f.cfg.Gemini.SummaryModel)
}

// Generator 返回 Gemini 内容生成器，语音合成使用
// 语音合成始终走 Gemini，与对话提供方无关
func (f *Factory) Generator(ctx context.Context, apiKey string) (ContentGenerator, error) {
	key, perRequest := resolveKey(ctx, apiKey, f.cfg.Gemini.APIKey)
	if key == "" {
		return nil, ErrNoCredential
	}
	if perRequest {
		return f.newGenerator(ctx, key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generator != nil && f.genKey == key {
		return f.generator, nil
	}
	g, err := f.newGenerator(ctx, key)
	if err != nil {
		return nil, err
	}
	f.genKey, f.generator = key, g
	return g, nil
}

func (f *Factory) build(ctx context.Context, apiKey, geminiModel string) (model.BaseChatModel, error) {
	switch f.cfg.Provider {
	case "gemini", "":
		g, err := f.Generator(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		temperature := f.cfg.Gemini.Temperature
		return NewGeminiChatModel(g, &GeminiConfig{
			Model:       geminiModel,
			Temperature: &temperature,
			Timeout:     time.Duration(f.cfg.Gemini.Timeout) * time.Second,
		}), nil
	case "openai":
		return f.openaiModel(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", f.cfg.Provider)
	}
}

func (f *Factory) openaiModel(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	key, perRequest := resolveKey(ctx, apiKey, f.cfg.OpenAI.APIKey)
	if key == "" {
		return nil, ErrNoCredential
	}
	if perRequest {
		return f.newOpenAI(ctx, key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openai != nil && f.openaiKey == key {
		return f.openai, nil
	}
	cm, err := f.newOpenAI(ctx, key)
	if err != nil {
		return nil, err
	}
	f.openaiKey, f.openai = key, cm
	return cm, nil
}

func (f *Factory) newOpenAI(ctx context.Context, key string) (model.BaseChatModel, error) {
	temperature := f.cfg.Gemini.Temperature
	return NewOpenAIChatModel(ctx, &OpenAIConfig{
		APIKey:      key,
		BaseURL:     f.cfg.OpenAI.BaseURL,
		Model:       f.cfg.OpenAI.Model,
		Temperature: &temperature,
		Timeout:     time.Duration(f.cfg.OpenAI.Timeout) * time.Second,
	})
}

// resolveKey 凭证优先级：请求上下文、调用方传入（偏好设置）、配置文件
// perRequest 表示凭证来自请求上下文
func resolveKey(ctx context.Context, apiKey, configured string) (key string, perRequest bool) {
	if k := CredentialFromContext(ctx); k != "" {
		return k, true
	}
	if apiKey != "" {
		return apiKey, false
	}
	return configured, false
}

