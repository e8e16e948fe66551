// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName      string   `toml:"appName"` // 应用名称，用于日志标识等
	Host         string   `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port         int      `toml:"port"`    // 服务器监听端口，如 8000
	Mode         string   `toml:"mode"`    // 运行模式：dev / release
	TLS          bool     `toml:"tls"`     // 是否启用 TLS
	CertFile     string   `toml:"certFile"`
	KeyFile      string   `toml:"keyFile"`
	AllowOrigins []string `toml:"allowOrigins"` // CORS 允许的来源，留空表示全部允许
}

// MysqlConfig MySQL 数据库连接配置
// Driver 为 sqlite 时使用 DSN 字段（本地调试、测试）
type MysqlConfig struct {
	Driver       string `toml:"driver"`       // mysql / sqlite
	DSN          string `toml:"dsn"`          // sqlite 文件路径或完整 DSN
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	MaxOpenConns int    `toml:"maxOpenConns"`
	MaxIdleConns int    `toml:"maxIdleConns"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`  // 关闭时不使用缓存
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
	Workers  int    `toml:"workers"`  // 异步任务协程数
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 关系事件审计流配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "log" 只写日志，"kafka" 投递到 Kafka
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	EventTopic  string        `toml:"eventTopic"`  // 关系事件主题
	Timeout     time.Duration `toml:"timeout"`     // 写超时（秒）
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret            string `toml:"secret"`            // JWT 签名密钥，建议 32 字符以上
	Issuer            string `toml:"issuer"`            // 签发方
	AccessTokenExpiry int    `toml:"accessTokenExpiry"` // Access Token 有效期（分钟）
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // 默认 /metrics
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig    `toml:"mainConfig"`    // 主配置
	MysqlConfig   `toml:"mysqlConfig"`   // 数据库配置
	RedisConfig   `toml:"redisConfig"`   // Redis 配置
	LogConfig     `toml:"logConfig"`     // 日志配置
	KafkaConfig   `toml:"kafkaConfig"`   // Kafka 配置
	JWTConfig     `toml:"jwtConfig"`     // JWT 配置
	MetricsConfig `toml:"metricsConfig"` // 指标配置
}

// config 全局配置单例，延迟加载
var config *Config

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml", // 从 cmd 子目录运行时的路径
	"../../configs/config.toml",
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	for _, path := range searchPaths {
		if err := LoadFile(path, config); err == nil {
			return nil
		}
	}
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 解析指定路径的配置文件到 cfg
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.applyDefaults()
	return nil
}

// Decode 从字符串解析配置，测试中使用
func Decode(data string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "harmony_server"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.Mode == "" {
		c.Mode = "release"
	}
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.RedisConfig.Workers <= 0 {
		c.RedisConfig.Workers = 4
	}
	if c.MessageMode == "" {
		c.MessageMode = "log"
	}
	if c.EventTopic == "" {
		c.EventTopic = "relation_events"
	}
	if c.AccessTokenExpiry <= 0 {
		c.AccessTokenExpiry = 60
	}
	if c.MetricsConfig.Path == "" {
		c.MetricsConfig.Path = "/metrics"
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		if err := LoadConfig(); err != nil {
			config.applyDefaults() // 找不到配置文件时使用默认值
		}
	}
	return config
}
