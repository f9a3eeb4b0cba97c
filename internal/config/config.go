package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Groq       GroqConfig       `mapstructure:"groq"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Quiz       QuizConfig       `mapstructure:"quiz"`
	Session    SessionConfig    `mapstructure:"session"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// GroqConfig configures the chat completion endpoint.
// The API key and model are validated at startup so a missing credential
// fails fast instead of surfacing as an auth error on the first request.
type GroqConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key" validate:"required"`
	Model          string  `mapstructure:"model" validate:"required"`
	Temperature    float32 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gt=0"`
}

type CloudinaryConfig struct {
	CloudName      string `mapstructure:"cloud_name" validate:"required"`
	UploadPreset   string `mapstructure:"upload_preset" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

type QuizConfig struct {
	MinContentWords int `mapstructure:"min_content_words" validate:"gt=0"`
	QuestionCount   int `mapstructure:"question_count" validate:"gt=0"`
	ChoiceCount     int `mapstructure:"choice_count" validate:"gt=1"`
}

type SessionConfig struct {
	SigningKey     string `mapstructure:"signing_key" validate:"required"`
	TokenTTLHours  int    `mapstructure:"token_ttl_hours" validate:"gt=0"`
	CacheDirectory string `mapstructure:"cache_directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studysnap")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "studysnap")
	v.SetDefault("database.username", "user")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama3-8b-8192")
	v.SetDefault("groq.temperature", 0.7)
	v.SetDefault("groq.timeout_seconds", 30)
	v.SetDefault("cloudinary.timeout_seconds", 60)
	v.SetDefault("quiz.min_content_words", 50)
	v.SetDefault("quiz.question_count", 5)
	v.SetDefault("quiz.choice_count", 4)
	v.SetDefault("session.token_ttl_hours", 72)
	v.SetDefault("session.cache_directory", filepath.Join(".studysnap", "cache"))

	// Secrets come from environment variables only, never from the config file
	if err := v.BindEnv("groq.api_key", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GROQ_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("groq.model", "GROQ_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind GROQ_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME"); err != nil {
		return nil, fmt.Errorf("failed to bind CLOUDINARY_CLOUD_NAME environment variable: %w", err)
	}
	if err := v.BindEnv("cloudinary.upload_preset", "CLOUDINARY_UPLOAD_PRESET"); err != nil {
		return nil, fmt.Errorf("failed to bind CLOUDINARY_UPLOAD_PRESET environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("session.signing_key", "SESSION_SIGNING_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind SESSION_SIGNING_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
