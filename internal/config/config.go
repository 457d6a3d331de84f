// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Session      SessionConfig      `mapstructure:"session"`
	Database     DatabaseConfig     `mapstructure:"database"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	StaticDir      string   `mapstructure:"static_dir"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Addr 返回 HTTP 服务监听地址。
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// SessionConfig 存储会话 cookie 与会话存储相关的配置。
type SessionConfig struct {
	Secret         string        `mapstructure:"secret"`
	TTL            time.Duration `mapstructure:"ttl"`
	CookieName     string        `mapstructure:"cookie_name"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	Backend        string        `mapstructure:"backend"` // "redis" 或 "memory"
	MaxStoredTurns int           `mapstructure:"max_stored_turns"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。DSN 为空时不启用对话归档。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig 存储本地推理服务相关的配置。
type LLMConfig struct {
	BaseURL    string              `mapstructure:"base_url"`
	APIKey     string              `mapstructure:"api_key"`
	Model      string              `mapstructure:"model"`
	Timeout    time.Duration       `mapstructure:"timeout"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Prompt     LLMPromptConfig     `mapstructure:"prompt"`
}

// LLMGenerationConfig 配置生成相关参数。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig 配置系统提示词。
type LLMPromptConfig struct {
	System string `mapstructure:"system"`
}

// ConversationConfig 配置构建 prompt 时的滑动窗口。
type ConversationConfig struct {
	Window int `mapstructure:"window"`
}

// RateLimitConfig 配置聊天接口的限流参数。
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// DefaultSystemPrompt 是固定的系统指令。
const DefaultSystemPrompt = "You are a compassionate mental health assistant. Provide supportive, empathetic responses about mental wellness, brain health, and digital wellbeing. Keep your responses concise and helpful."

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.static_dir", ".")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5000", "http://127.0.0.1:5000"})

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "mindmirror_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.max_stored_turns", 200)

	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.mysql.dsn", "")

	v.SetDefault("llm.base_url", "http://localhost:8080/v1")
	v.SetDefault("llm.model", "Kush26/Mental_Health_ChatBot")
	v.SetDefault("llm.timeout", 120*time.Second)
	v.SetDefault("llm.generation.temperature", 0.7)
	v.SetDefault("llm.generation.top_p", 0.9)
	v.SetDefault("llm.generation.max_tokens", 256)
	v.SetDefault("llm.prompt.system", DefaultSystemPrompt)

	v.SetDefault("conversation.window", 10)

	v.SetDefault("rate_limit.rps", 1.0)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_path", "")
}

// Init 初始化配置加载：先读取可选的 .env，再读取 YAML 文件，最后应用 MINDMIRROR_ 前缀的环境变量。
// 配置文件不存在时仅使用默认值。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}
	Conf = *cfg
}

// Load 读取配置但不修改全局变量，便于测试。
func Load(configPath string) (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MINDMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置是否可用。
func (c *Config) Validate() error {
	if c.Conversation.Window <= 0 {
		return fmt.Errorf("conversation.window must be positive, got %d", c.Conversation.Window)
	}
	switch c.Session.Backend {
	case "redis", "memory":
	default:
		return fmt.Errorf("session.backend must be redis or memory, got %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	return nil
}
