package config

import (
	"fmt"
	"strings"
)

// Config 表示应用程序的完整配置
type Config struct {
	// HTTP 服务器配置（仅 serve 命令使用）
	HTTP HTTPConfig `mapstructure:"http"`

	// 认证配置
	Auth AuthConfig `mapstructure:"auth"`

	// 日志配置
	Log LogConfig `mapstructure:"log"`

	// 批量转换配置
	Batch BatchConfig `mapstructure:"batch"`
}

// HTTPConfig 定义 HTTP 服务器配置
type HTTPConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	MaxRequestSizeMB int    `mapstructure:"max-request-size-mb"`
}

// Validate 验证 HTTP 配置
func (c *HTTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("http-host is required")
	}
	if c.Port <= 0 || c.Port > MaxPort {
		return fmt.Errorf("http-port must be between 1 and %d", MaxPort)
	}
	if c.MaxRequestSizeMB <= 0 || c.MaxRequestSizeMB > MaxRequestSizeMB {
		return fmt.Errorf("http-max-request-size-mb must be between 1 and %d", MaxRequestSizeMB)
	}
	return nil
}

// Addr 返回监听地址
func (c *HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxRequestSize 返回请求体上限（字节）
func (c *HTTPConfig) MaxRequestSize() int64 {
	return int64(c.MaxRequestSizeMB) * 1024 * 1024
}

// AuthConfig 定义共享密钥认证配置
type AuthConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Secret    string   `mapstructure:"secret"`
	Whitelist []string `mapstructure:"whitelist"`
}

// Validate 验证认证配置
func (c *AuthConfig) Validate() error {
	if c.Enabled && c.Secret == "" {
		return fmt.Errorf("auth-secret is required when auth is enabled")
	}
	for _, p := range c.Whitelist {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("auth whitelist path %q must start with /", p)
		}
	}
	return nil
}

// LogConfig 定义日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate 验证日志配置
func (c *LogConfig) Validate() error {
	if !validLogLevels[strings.ToLower(c.Level)] {
		return fmt.Errorf("log-level must be one of: debug, info, warn, error, fatal, got: %s", c.Level)
	}
	if !validLogFormats[strings.ToLower(c.Format)] {
		return fmt.Errorf("log-format must be one of: json, text, got: %s", c.Format)
	}
	return nil
}

// BatchConfig 定义批量转换配置
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max-size"`
}

// Validate 验证批量转换配置
func (c *BatchConfig) Validate() error {
	if c.Workers <= 0 || c.Workers > MaxBatchWorkers {
		return fmt.Errorf("batch-workers must be between 1 and %d", MaxBatchWorkers)
	}
	if c.MaxSize <= 0 || c.MaxSize > MaxBatchMaxSize {
		return fmt.Errorf("batch-max-size must be between 1 and %d", MaxBatchMaxSize)
	}
	return nil
}

// ApplyDefaults 为未设置的字段填充默认值
func (c *Config) ApplyDefaults() {
	if c.HTTP.Host == "" {
		c.HTTP.Host = DefaultHTTPHost
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}
	if c.HTTP.MaxRequestSizeMB == 0 {
		c.HTTP.MaxRequestSizeMB = DefaultMaxRequestSizeMB
	}
	if c.Auth.Whitelist == nil {
		c.Auth.Whitelist = append([]string(nil), DefaultAuthWhitelist...)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = DefaultBatchWorkers
	}
	if c.Batch.MaxSize == 0 {
		c.Batch.MaxSize = DefaultBatchMaxSize
	}
}

// Validate 填充默认值后验证所有子配置
func (c *Config) Validate() error {
	c.ApplyDefaults()

	validators := []Validator{&c.HTTP, &c.Auth, &c.Log, &c.Batch}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// String 返回配置的安全摘要（不包含敏感信息）
func (c *Config) String() string {
	secret := ""
	if c.Auth.Secret != "" {
		secret = "[REDACTED]"
	}
	return fmt.Sprintf(
		"HTTP: {Host: %s, Port: %d, MaxRequestSizeMB: %d}, "+
			"Auth: {Enabled: %t, Secret: %s, Whitelist: %v}, "+
			"Log: {Level: %s, Format: %s}, "+
			"Batch: {Workers: %d, MaxSize: %d}",
		c.HTTP.Host, c.HTTP.Port, c.HTTP.MaxRequestSizeMB,
		c.Auth.Enabled, secret, c.Auth.Whitelist,
		c.Log.Level, c.Log.Format,
		c.Batch.Workers, c.Batch.MaxSize,
	)
}
