// Package preference 管理界面语言、语音合成与用户资料等偏好设置
package preference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ashwinyue/prts/internal/i18n"
	"github.com/ashwinyue/prts/internal/kv"
)

// TTS 提供方
const (
	TTSGemini = "gemini"
	TTSCustom = "custom"
)

// 默认值
const (
	DefaultCustomTTSURL = "http://127.0.0.1:9880"
	DefaultUserAvatar   = "https://picsum.photos/seed/doctor/100/100"
)

// ErrInvalid 偏好值非法
var ErrInvalid = errors.New("invalid preference")

// Preferences 偏好设置
type Preferences struct {
	Language     i18n.Language `json:"language"`
	TTSProvider  string        `json:"ttsProvider"`
	CustomTTSURL string        `json:"customTtsUrl"`
	UserAvatar   string        `json:"userAvatar"`
	APIKey       string        `json:"-"`
}

// HasAPIKey 是否配置了调用凭证
func (p Preferences) HasAPIKey() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

// Defaults 偏好默认值来源
type Defaults struct {
	Language string
	APIKey   string
}

// Service 偏好服务
type Service struct {
	mu    sync.RWMutex
	store kv.Store
	prefs Preferences
}

// NewService 创建偏好服务并从 kv 加载
// 各值以原始字符串保存，缺失时使用默认值
func NewService(ctx context.Context, store kv.Store, defaults Defaults) *Service {
	s := &Service{
		store: store,
		prefs: Preferences{
			Language:     i18n.Parse(defaults.Language),
			TTSProvider:  TTSGemini,
			CustomTTSURL: DefaultCustomTTSURL,
			UserAvatar:   DefaultUserAvatar,
			APIKey:       defaults.APIKey,
		},
	}

	if v, ok := s.load(ctx, kv.KeyLanguage); ok {
		s.prefs.Language = i18n.Parse(v)
	}
	if v, ok := s.load(ctx, kv.KeyTTSProvider); ok && validProvider(v) {
		s.prefs.TTSProvider = v
	}
	if v, ok := s.load(ctx, kv.KeyCustomTTSURL); ok && v != "" {
		s.prefs.CustomTTSURL = v
	}
	if v, ok := s.load(ctx, kv.KeyUserAvatar); ok && v != "" {
		s.prefs.UserAvatar = v
	}
	if v, ok := s.load(ctx, kv.KeyAPIKey); ok && v != "" {
		s.prefs.APIKey = v
	}
	return s
}

// Get 当前偏好
func (s *Service) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Language 当前界面语言
func (s *Service) Language() i18n.Language {
	return s.Get().Language
}

// T 按当前语言翻译
func (s *Service) T(key string) string {
	return i18n.T(s.Language(), key)
}

// UpdateRequest 更新请求，nil 字段保持不变
type UpdateRequest struct {
	Language     *string `json:"language"`
	TTSProvider  *string `json:"ttsProvider"`
	CustomTTSURL *string `json:"customTtsUrl"`
	UserAvatar   *string `json:"userAvatar"`
	APIKey       *string `json:"apiKey"`
}

// Update 校验并保存偏好
func (s *Service) Update(ctx context.Context, req *UpdateRequest) (Preferences, error) {
	if req.Language != nil {
		switch i18n.Language(*req.Language) {
		case i18n.LangZH, i18n.LangEN:
		default:
			return Preferences{}, fmt.Errorf("%w: language %q", ErrInvalid, *req.Language)
		}
	}
	if req.TTSProvider != nil && !validProvider(*req.TTSProvider) {
		return Preferences{}, fmt.Errorf("%w: tts provider %q", ErrInvalid, *req.TTSProvider)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Language != nil {
		s.prefs.Language = i18n.Language(*req.Language)
		s.save(ctx, kv.KeyLanguage, *req.Language)
	}
	if req.TTSProvider != nil {
		s.prefs.TTSProvider = *req.TTSProvider
		s.save(ctx, kv.KeyTTSProvider, *req.TTSProvider)
	}
	if req.CustomTTSURL != nil {
		s.prefs.CustomTTSURL = strings.TrimSpace(*req.CustomTTSURL)
		s.save(ctx, kv.KeyCustomTTSURL, s.prefs.CustomTTSURL)
	}
	if req.UserAvatar != nil {
		s.prefs.UserAvatar = *req.UserAvatar
		s.save(ctx, kv.KeyUserAvatar, *req.UserAvatar)
	}
	if req.APIKey != nil {
		s.prefs.APIKey = strings.TrimSpace(*req.APIKey)
		s.save(ctx, kv.KeyAPIKey, s.prefs.APIKey)
	}
	return s.prefs, nil
}

func (s *Service) load(ctx context.Context, key string) (string, bool) {
	v, found, err := s.store.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: failed to load preference %s: %v", key, err)
		return "", false
	}
	return v, found
}

func (s *Service) save(ctx context.Context, key, value string) {
	if err := s.store.Set(context.WithoutCancel(ctx), key, value); err != nil {
		log.Printf("Warning: failed to save preference %s: %v", key, err)
	}
}

func validProvider(p string) bool {
	return p == TTSGemini || p == TTSCustom
}
