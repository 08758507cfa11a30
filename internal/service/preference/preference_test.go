package preference

import (
	"context"
	"errors"
	"testing"

	"github.com/ashwinyue/prts/internal/i18n"
	"github.com/ashwinyue/prts/internal/kv"
)

func strPtr(s string) *string { return &s }

func TestNewService_Defaults(t *testing.T) {
	s := NewService(context.Background(), kv.NewMemoryStore(), Defaults{Language: "zh"})
	p := s.Get()

	if p.Language != i18n.LangZH {
		t.Errorf("Language = %q, want zh", p.Language)
	}
	if p.TTSProvider != TTSGemini {
		t.Errorf("TTSProvider = %q, want gemini", p.TTSProvider)
	}
	if p.CustomTTSURL != DefaultCustomTTSURL {
		t.Errorf("CustomTTSURL = %q", p.CustomTTSURL)
	}
	if p.UserAvatar != DefaultUserAvatar {
		t.Errorf("UserAvatar = %q", p.UserAvatar)
	}
	if p.HasAPIKey() {
		t.Error("no api key expected")
	}
	if s.T(i18n.DefaultSessionTitle) != "新会话" {
		t.Errorf("T() = %q, want 新会话", s.T(i18n.DefaultSessionTitle))
	}
}

func TestNewService_LoadsStored(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	_ = mem.Set(ctx, kv.KeyLanguage, "en")
	_ = mem.Set(ctx, kv.KeyTTSProvider, "custom")
	_ = mem.Set(ctx, kv.KeyAPIKey, "stored-key")
	_ = mem.Set(ctx, kv.KeyCustomTTSURL, "http://tts:9880")

	p := NewService(ctx, mem, Defaults{Language: "zh", APIKey: "config-key"}).Get()
	if p.Language != i18n.LangEN || p.TTSProvider != TTSCustom {
		t.Errorf("unexpected prefs: %+v", p)
	}
	if p.APIKey != "stored-key" {
		t.Errorf("APIKey = %q, stored value should win over config", p.APIKey)
	}
	if p.CustomTTSURL != "http://tts:9880" {
		t.Errorf("CustomTTSURL = %q", p.CustomTTSURL)
	}
}

func TestNewService_IgnoresBadProvider(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	_ = mem.Set(ctx, kv.KeyTTSProvider, "elevenlabs")

	if p := NewService(ctx, mem, Defaults{}).Get(); p.TTSProvider != TTSGemini {
		t.Errorf("TTSProvider = %q, want gemini", p.TTSProvider)
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	s := NewService(ctx, mem, Defaults{})

	tests := []struct {
		name    string
		req     *UpdateRequest
		wantErr bool
	}{
		{name: "language en", req: &UpdateRequest{Language: strPtr("en")}},
		{name: "bad language", req: &UpdateRequest{Language: strPtr("fr")}, wantErr: true},
		{name: "custom tts", req: &UpdateRequest{TTSProvider: strPtr("custom"), CustomTTSURL: strPtr(" http://x:1 ")}},
		{name: "bad provider", req: &UpdateRequest{TTSProvider: strPtr("azure")}, wantErr: true},
		{name: "api key", req: &UpdateRequest{APIKey: strPtr("  k  ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Update(ctx, tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error = %v, want ErrInvalid", err)
			}
		})
	}

	p := s.Get()
	if p.Language != i18n.LangEN || p.TTSProvider != TTSCustom || p.CustomTTSURL != "http://x:1" || p.APIKey != "k" {
		t.Errorf("unexpected prefs after updates: %+v", p)
	}

	reloaded := NewService(ctx, mem, Defaults{}).Get()
	if reloaded != p {
		t.Errorf("reloaded = %+v, want %+v", reloaded, p)
	}
}

// cancelAwareStore 模拟网络存储：上下文取消后写入失败
type cancelAwareStore struct {
	*kv.MemoryStore
}

func (s cancelAwareStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func TestService_UpdatePersistsAfterRequestCanceled(t *testing.T) {
	mem := kv.NewMemoryStore()
	s := NewService(context.Background(), cancelAwareStore{mem}, Defaults{Language: "zh"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Update(ctx, &UpdateRequest{Language: strPtr("en")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if v, found, _ := mem.Get(context.Background(), kv.KeyLanguage); !found || v != "en" {
		t.Errorf("stored language = %q, %v; want en", v, found)
	}
}
