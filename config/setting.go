package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency" validate:"required"`
	BodyLimit   int    `koanf:"body_limit" validate:"required"`
	AppName     string `koanf:"app_name" validate:"required"`
	APIPrefix   string `koanf:"api_prefix" validate:"required"`
}

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
	Fatal LogLevel = "fatal"
	Panic LogLevel = "panic"
)

type Module string

const (
	ModuleChunking Module = "chunking"
	ModuleDatabase Module = "database"
	ModuleExtract  Module = "extract"
	ModuleLLM      Module = "llm"
	ModulePrompt   Module = "prompt"
	ModuleReport   Module = "report"
	ModuleS3       Module = "s3"
	ModuleCors     Module = "cors"
	ModuleServer   Module = "server"
	ModuleSetting  Module = "setting"
	ModuleStore    Module = "store"
	ModuleUpload   Module = "upload"
)

type llmConfig struct {
	Key               string  `koanf:"key"`
	BaseURL           string  `koanf:"base_url" validate:"required,url"`
	Model             string  `koanf:"model" validate:"required"`
	ContextLength     int     `koanf:"context_length" validate:"required,gt=0"`
	MaxTokensPerChunk int     `koanf:"max_tokens_per_chunk" validate:"required,gt=0"`
	Temperature       float64 `koanf:"temperature" validate:"gte=0,lte=2"`
	TimeoutSeconds    int     `koanf:"timeout_seconds" validate:"required,gt=0"`
}

type chunkingConfig struct {
	Strategy     string `koanf:"strategy" validate:"required,oneof=semantic fixed"`
	MaxChunkSize int    `koanf:"max_chunk_size" validate:"required,gt=0"`
	OverlapSize  int    `koanf:"overlap_size" validate:"required,gt=0"`
	// Encoding enables exact token counting of chunks with tiktoken; empty disables it.
	Encoding string `koanf:"encoding"`
}

type promptConfig struct {
	Dir     string `koanf:"dir"`
	Version string `koanf:"version" validate:"required"`
}

type reportConfig struct {
	Title string `koanf:"title" validate:"required"`
}

type storageConfig struct {
	Backend     string `koanf:"backend" validate:"required,oneof=local s3 database"`
	ReportsDir  string `koanf:"reports_dir" validate:"required"`
	UploadDir   string `koanf:"upload_dir" validate:"required"`
	MaxFileSize int64  `koanf:"max_file_size" validate:"required,gt=0"`
}

type databaseConfig struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"required"`
	AllowMethods []string `koanf:"allow_methods" validate:"required"`
	AllowHeaders []string `koanf:"allow_headers" validate:"required"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
}

type config struct {
	Server   serverConfig   `koanf:"server"`
	LLM      llmConfig      `koanf:"llm"`
	Chunking chunkingConfig `koanf:"chunking"`
	Prompt   promptConfig   `koanf:"prompt"`
	Report   reportConfig   `koanf:"report"`
	Storage  storageConfig  `koanf:"storage"`
	Database databaseConfig `koanf:"database"`
	LogLevel LogLevel       `koanf:"log_level"`
	Dns      string         `koanf:"dns"`
	S3       s3Config       `koanf:"s3"`
	Cors     corsConfig     `koanf:"cors"`
}

// Config is the exported view of the application settings.
type Config = config

func buildMySQLDSN(cfg databaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

var defaultConfig = config{
	Server: serverConfig{
		Port:        8000,
		Mode:        "release",
		Concurrency: 64,
		BodyLimit:   60 * 1024 * 1024,
		AppName:     "deep-research",
		APIPrefix:   "/api/v1",
	},
	LLM: llmConfig{
		Key:               "",
		BaseURL:           "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:             "qwen-turbo",
		ContextLength:     1000000,
		MaxTokensPerChunk: 500,
		Temperature:       0.7,
		TimeoutSeconds:    60,
	},
	Chunking: chunkingConfig{
		Strategy:     "semantic",
		MaxChunkSize: 2000,
		OverlapSize:  200,
	},
	Prompt: promptConfig{
		Dir:     "prompts",
		Version: "default",
	},
	Report: reportConfig{
		Title: "Research Report",
	},
	Storage: storageConfig{
		Backend:     "local",
		ReportsDir:  "reports",
		UploadDir:   "uploads",
		MaxFileSize: 50 * 1024 * 1024,
	},
	Database: databaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "deep_research",
		MaxIdleConns: 5,
		MaxOpenConns: 20,
		MaxLifetime:  30,
	},
	LogLevel: Info,
	S3: s3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		UseSSL:    false,
		Bucket:    "reports",
		Prefix:    "reports/",
	},
	Cors: corsConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
	},
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

// Default returns a copy of the built-in defaults.
func Default() Config {
	cfg := defaultConfig
	cfg.Cors.AllowOrigins = append([]string(nil), defaultConfig.Cors.AllowOrigins...)
	cfg.Cors.AllowMethods = append([]string(nil), defaultConfig.Cors.AllowMethods...)
	cfg.Cors.AllowHeaders = append([]string(nil), defaultConfig.Cors.AllowHeaders...)
	return cfg
}

// Load reads defaults, then the yaml file at path (if present), then APP_* environment
// variables, and validates the result.
//
// Environment keys map their first underscore to a section separator, so
// APP_LLM_MAX_TOKENS_PER_CHUNK sets llm.max_tokens_per_chunk.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, err)
		}
	}

	if err := k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "APP_")), "_", ".", 1)
	}), nil); err != nil {
		return cfg, fmt.Errorf("%v: load env: %w", ModuleSetting, err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("%v: unmarshal: %w", ModuleSetting, err)
	}

	if cfg.Dns == "" {
		cfg.Dns = buildMySQLDSN(cfg.Database)
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%v: config validation failed: %w", ModuleSetting, err)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v config validation failed:\n", ModuleSetting))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("  • %s: failed '%s' (value: %v)\n", e.Namespace(), e.Tag(), e.Value()))
	}
	return errors.New(sb.String())
}

func init() {
	path := os.Getenv("APP_CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}

	once.Do(func() {
		cfg, err := Load(path)
		if err != nil {
			log.Error(err.Error())
		}
		Cfg = cfg
	})
}
