// Package speech 把回复文本合成为语音
// 支持 Gemini 预置音色与自建 GPT-SoVITS 服务
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ashwinyue/prts/internal/config"
	"github.com/ashwinyue/prts/internal/model"
	"github.com/ashwinyue/prts/internal/service/llm"
	"github.com/ashwinyue/prts/internal/service/preference"
)

var (
	// ErrEmptyText 待合成文本为空
	ErrEmptyText = errors.New("text is required")
	// ErrNoAudio 服务未返回音频
	ErrNoAudio = errors.New("no audio in response")
)

// Audio 合成结果
type Audio struct {
	Data     []byte
	MIMEType string
}

// Preferences 读取当前偏好
type Preferences interface {
	Get() preference.Preferences
}

// Generators 按凭证提供 genai 内容生成器
type Generators interface {
	Generator(ctx context.Context, apiKey string) (llm.ContentGenerator, error)
}

// Service 语音合成服务
type Service struct {
	cfg        config.SpeechConfig
	prefs      Preferences
	generators Generators
	httpClient *http.Client
}

// NewService 创建语音合成服务
func NewService(cfg config.SpeechConfig, prefs Preferences, generators Generators) *Service {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{
		cfg:        cfg,
		prefs:      prefs,
		generators: generators,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient 替换自定义 TTS 使用的 HTTP 客户端
func (s *Service) SetHTTPClient(c *http.Client) {
	s.httpClient = c
}

// Voices 可选的 Gemini 预置音色
func (s *Service) Voices() []string {
	return append([]string(nil), model.AvailableVoices...)
}

// Synthesize 按偏好中的提供方合成语音
// 选择自定义提供方但未配置地址时使用 Gemini
func (s *Service) Synthesize(ctx context.Context, text, voiceID string) (*Audio, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	prefs := s.prefs.Get()
	if prefs.TTSProvider == preference.TTSCustom && prefs.CustomTTSURL != "" {
		return s.synthesizeCustom(ctx, prefs.CustomTTSURL, text, voiceID)
	}
	return s.synthesizeGemini(ctx, prefs.APIKey, text, voiceID)
}

func (s *Service) synthesizeGemini(ctx context.Context, apiKey, text, voiceID string) (*Audio, error) {
	gen, err := s.generators.Generator(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if voiceID == "" {
		voiceID = model.DefaultVoiceID
	}

	resp, err := gen.GenerateContent(ctx, s.cfg.Model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceID},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoAudio
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &Audio{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
		}
	}
	return nil, ErrNoAudio
}

// synthesizeCustom 调用 GPT-SoVITS 简易接口
func (s *Service) synthesizeCustom(ctx context.Context, endpoint, text, voiceID string) (*Audio, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse custom tts url: %w", err)
	}

	lang := s.cfg.Language
	if lang == "" {
		lang = "zh"
	}
	q := u.Query()
	q.Set("text", text)
	q.Set("text_language", lang)
	q.Set("character", voiceID)
	q.Set("speaker", voiceID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call custom tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("custom tts request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read custom tts response: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoAudio
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "audio/wav"
	}
	return &Audio{Data: data, MIMEType: mime}, nil
}
