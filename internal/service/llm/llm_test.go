package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/ashwinyue/prts/internal/config"
)

// fakeGenerator 记录请求并返回固定回复
type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
	calls    int
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: string(genai.RoleModel)}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeminiChatModel_Generate(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("Hello, ", "Doctor.")}
	temp := float32(0.8)
	m := NewGeminiChatModel(gen, &GeminiConfig{Model: "gemini-3-pro-preview", Temperature: &temp})

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("You are Amiya."),
		schema.UserMessage("hi"),
		schema.AssistantMessage("[Amiya]: hello", nil),
		schema.UserMessage("how are you"),
	}, WithResponseMIMEType(MIMEJSON))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if out.Content != "Hello, Doctor." || out.Role != schema.Assistant {
		t.Errorf("Generate() = %+v", out)
	}
	if gen.model != "gemini-3-pro-preview" {
		t.Errorf("model = %q", gen.model)
	}
	if len(gen.contents) != 3 {
		t.Fatalf("contents = %d, want 3 (system excluded)", len(gen.contents))
	}
	wantRoles := []string{string(genai.RoleUser), string(genai.RoleModel), string(genai.RoleUser)}
	for i, c := range gen.contents {
		if c.Role != wantRoles[i] {
			t.Errorf("contents[%d].Role = %q, want %q", i, c.Role, wantRoles[i])
		}
	}
	if gen.config.SystemInstruction == nil || gen.config.SystemInstruction.Parts[0].Text != "You are Amiya." {
		t.Error("system prompt should become SystemInstruction")
	}
	if gen.config.ResponseMIMEType != MIMEJSON {
		t.Errorf("ResponseMIMEType = %q, want %q", gen.config.ResponseMIMEType, MIMEJSON)
	}
	if gen.config.Temperature == nil || *gen.config.Temperature != 0.8 {
		t.Error("temperature should be forwarded")
	}
}

func TestGeminiChatModel_GenerateEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		want    string
		wantErr bool
	}{
		{name: "blocked response", resp: &genai.GenerateContentResponse{}, want: ""},
		{name: "nil content", resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, want: ""},
		{name: "provider error", err: errors.New("503"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewGeminiChatModel(&fakeGenerator{resp: tt.resp, err: tt.err}, &GeminiConfig{Model: "m"})
			out, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && out.Content != tt.want {
				t.Errorf("Content = %q, want %q", out.Content, tt.want)
			}
		})
	}
}

func TestGeminiChatModel_Stream(t *testing.T) {
	m := NewGeminiChatModel(&fakeGenerator{resp: textResponse("ok")}, &GeminiConfig{Model: "m"})
	sr, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("x")})
	if err != nil {
		t.Fatal(err)
	}
	defer sr.Close()

	msg, err := sr.Recv()
	if err != nil || msg.Content != "ok" {
		t.Errorf("Recv() = %v, %v", msg, err)
	}
}

func TestGetOptions_Default(t *testing.T) {
	if got := GetOptions().ResponseMIMEType; got != MIMEText {
		t.Errorf("default ResponseMIMEType = %q, want %q", got, MIMEText)
	}
}

func TestFactory_CachesPerKey(t *testing.T) {
	created := map[string]int{}
	f := NewFactoryWithGenerator(config.AIConfig{
		Provider: "gemini",
		Gemini:   config.GeminiConfig{ChatModel: "chat", SummaryModel: "summary"},
	}, func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		created[apiKey]++
		return &fakeGenerator{resp: textResponse("x")}, nil
	})
	ctx := context.Background()

	if _, err := f.ChatModel(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.SummaryModel(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.ChatModel(ctx, "k2"); err != nil {
		t.Fatal(err)
	}

	if created["k1"] != 1 || created["k2"] != 1 {
		t.Errorf("generator creations = %v, want one per key", created)
	}
	if f.genKey != "k2" {
		t.Errorf("cached key = %q, want only the latest key", f.genKey)
	}

	// 只保留最近一个凭证的客户端
	if _, err := f.ChatModel(ctx, "k1"); err != nil {
		t.Fatal(err)
	}
	if created["k1"] != 2 {
		t.Errorf("k1 creations = %d, want 2 after k2 replaced it", created["k1"])
	}
}

func TestFactory_RequestCredentialNotCached(t *testing.T) {
	created := 0
	f := NewFactoryWithGenerator(config.AIConfig{
		Provider: "gemini",
		Gemini:   config.GeminiConfig{APIKey: "cfg"},
	}, func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		created++
		return &fakeGenerator{resp: textResponse("x")}, nil
	})

	for i := 0; i < 100; i++ {
		ctx := WithCredential(context.Background(), fmt.Sprintf("header-%d", i))
		if _, err := f.ChatModel(ctx, ""); err != nil {
			t.Fatal(err)
		}
	}

	if created != 100 {
		t.Errorf("generator creations = %d, want one per request", created)
	}
	if f.generator != nil || f.genKey != "" {
		t.Errorf("request credential %q must not be retained", f.genKey)
	}

	if _, err := f.ChatModel(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if f.genKey != "cfg" {
		t.Errorf("cached key = %q, want cfg", f.genKey)
	}
}

func TestFactory_Credentials(t *testing.T) {
	fn := func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		return &fakeGenerator{}, nil
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.AIConfig
		apiKey  string
		wantErr error
	}{
		{name: "no key anywhere", cfg: config.AIConfig{Provider: "gemini"}, wantErr: ErrNoCredential},
		{name: "config key", cfg: config.AIConfig{Provider: "gemini", Gemini: config.GeminiConfig{APIKey: "cfg"}}},
		{name: "preference key", cfg: config.AIConfig{Provider: "gemini"}, apiKey: "pref"},
		{name: "openai without key", cfg: config.AIConfig{Provider: "openai"}, wantErr: ErrNoCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactoryWithGenerator(tt.cfg, fn)
			_, err := f.ChatModel(ctx, tt.apiKey)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ChatModel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_UnsupportedProvider(t *testing.T) {
	f := NewFactoryWithGenerator(config.AIConfig{Provider: "claude"}, nil)
	if _, err := f.ChatModel(context.Background(), "k"); err == nil {
		t.Error("unsupported provider should fail")
	}
}

func TestFactory_ContextCredentialWins(t *testing.T) {
	var got string
	f := NewFactoryWithGenerator(config.AIConfig{
		Provider: "gemini",
		Gemini:   config.GeminiConfig{APIKey: "cfg"},
	}, func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		got = apiKey
		return &fakeGenerator{}, nil
	})

	ctx := WithCredential(context.Background(), "header")
	if _, err := f.ChatModel(ctx, "pref"); err != nil {
		t.Fatal(err)
	}
	if got != "header" {
		t.Errorf("credential = %q, want header", got)
	}
}
