package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath 指定配置文件路径的环境变量。
const EnvConfigPath = "SEEHOOKS_CONFIG"

// DefaultPath 为未设置环境变量时使用的配置文件。
var DefaultPath = filepath.Join("configs", "seehooks.json")

// Config 描述了钩子守护进程在启动阶段需要加载的配置。
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Hooks   HooksConfig   `json:"hooks"`
	Session SessionConfig `json:"session"`
}

// LoggingConfig 对应 pkg/logger 的配置项。
type LoggingConfig struct {
	Level   string      `json:"level"`
	Format  string      `json:"format"`
	Outputs []string    `json:"outputs"`
	Audit   AuditConfig `json:"audit"`
}

// AuditConfig 控制审计日志的滚动策略。
type AuditConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// HooksConfig 指定钩子文档以及插件目录。
type HooksConfig struct {
	Document  string `json:"document"`
	PluginDir string `json:"plugin_dir"`
}

// SessionConfig 描述沙箱会话本身。
type SessionConfig struct {
	Identifier string `json:"identifier"`
	WorkDir    string `json:"workdir"`
}

// Path 返回应当读取的配置文件路径。
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查配置是否自洽。
func (c *Config) Validate() error {
	if c.Hooks.Document == "" {
		return errors.New("hooks.document 不能为空")
	}
	if c.Logging.Audit.Enabled && c.Logging.Audit.Path == "" {
		return errors.New("启用审计日志时 logging.audit.path 不能为空")
	}
	return nil
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值，相对路径以配置文件目录为基准。
func (c *Config) applyDefaults(baseDir string) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Hooks.Document == "" {
		c.Hooks.Document = "hooks.yaml"
	}
	c.Hooks.Document = resolve(baseDir, c.Hooks.Document)
	if c.Hooks.PluginDir != "" {
		c.Hooks.PluginDir = resolve(baseDir, c.Hooks.PluginDir)
	}
	if c.Logging.Audit.Path != "" {
		c.Logging.Audit.Path = resolve(baseDir, c.Logging.Audit.Path)
	}
	if c.Session.WorkDir == "" {
		c.Session.WorkDir = filepath.Join(baseDir, "sandbox")
	} else {
		c.Session.WorkDir = resolve(baseDir, c.Session.WorkDir)
	}
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
