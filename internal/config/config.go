package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Speech   SpeechConfig
	Context  ContextConfig
	Session  SessionConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string
	Environment string
	Version     string
	Debug       bool
	Language    string // 默认界面语言 zh / en
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string
	Port         int
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

// StorageConfig 持久化配置
type StorageConfig struct {
	Backend         string // memory / redis / database
	OperatorBackend string // kv / database
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// AIConfig AI配置
type AIConfig struct {
	Provider string // gemini / openai
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
}

// GeminiConfig Gemini配置
type GeminiConfig struct {
	APIKey       string
	ChatModel    string
	SummaryModel string
	Temperature  float32
	Timeout      int
}

// OpenAIConfig OpenAI 兼容接口配置
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout int
}

// SpeechConfig 语音合成配置
type SpeechConfig struct {
	Provider  string // gemini / custom
	Model     string
	CustomURL string
	Language  string // 自定义 TTS 的 text_language
	Timeout   int
}

// ContextConfig 上下文用量配置
type ContextConfig struct {
	Ceiling   int
	WarnRatio float64
}

// SessionConfig 会话配置
type SessionConfig struct {
	SummaryWindow int // 摘要使用的最近消息数
	UserName      string
}

var globalConfig *Config

// Load 加载配置
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 环境变量
	v.SetEnvPrefix("PRTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded")
	}
	return globalConfig
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Context.Ceiling <= 0 {
		return fmt.Errorf("context.ceiling must be positive, got %d", c.Context.Ceiling)
	}
	if c.Context.WarnRatio <= 0 || c.Context.WarnRatio > 1 {
		return fmt.Errorf("context.warnRatio must be in (0, 1], got %v", c.Context.WarnRatio)
	}
	switch c.Storage.Backend {
	case "memory", "redis", "database":
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	switch c.Storage.OperatorBackend {
	case "kv", "database":
	default:
		return fmt.Errorf("unsupported operator backend: %s", c.Storage.OperatorBackend)
	}
	if c.Storage.OperatorBackend == "database" && c.Storage.Backend != "database" {
		// 干员表依赖数据库连接
		return fmt.Errorf("operator backend %q requires storage backend %q", "database", "database")
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "prts")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.language", "zh")

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 120)

	// Storage
	v.SetDefault("storage.backend", "redis")
	v.SetDefault("storage.operatorBackend", "kv")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "prts")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.maxLifetime", 300)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "prts:")

	// AI
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.chatModel", "gemini-3-pro-preview")
	v.SetDefault("ai.gemini.summaryModel", "gemini-3-flash-preview")
	v.SetDefault("ai.gemini.temperature", 0.8)
	v.SetDefault("ai.gemini.timeout", 120)
	v.SetDefault("ai.openai.baseUrl", "https://api.openai.com/v1")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.timeout", 120)

	// Speech
	v.SetDefault("speech.provider", "gemini")
	v.SetDefault("speech.model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("speech.customUrl", "http://127.0.0.1:9880")
	v.SetDefault("speech.language", "zh")
	v.SetDefault("speech.timeout", 60)

	// Context
	v.SetDefault("context.ceiling", 20000000)
	v.SetDefault("context.warnRatio", 0.9)

	// Session
	v.SetDefault("session.summaryWindow", 50)
	v.SetDefault("session.userName", "Doctor")
}
