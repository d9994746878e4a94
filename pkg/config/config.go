package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Confirm  ConfirmConfig  `mapstructure:"confirm"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Networks []NetworkEntry `mapstructure:"networks"`
	Price    ServiceConfig  `mapstructure:"price"`
	Scan     ServiceConfig  `mapstructure:"scan"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// WorkerConfig 生命周期副作用的执行方式
type WorkerConfig struct {
	Mode        string `mapstructure:"mode"` // "local" (进程内) or "asynq"
	Concurrency int    `mapstructure:"concurrency"`
}

type ConfirmConfig struct {
	// LifecycleDelay added/approved/rejected 副作用的固定延迟，让当前调用栈先返回
	LifecycleDelay time.Duration `mapstructure:"lifecycle_delay"`
	// RegistryName 常驻确认框在 name -> dialog id 注册表里的名字
	RegistryName string        `mapstructure:"registry_name"`
	TombstoneTTL time.Duration `mapstructure:"tombstone_ttl"`
	StateKey     string        `mapstructure:"state_key"`
	// EnrichTimeout 后台富化的上限，必须短于 TombstoneTTL
	EnrichTimeout time.Duration `mapstructure:"enrich_timeout"`
}

// Normalize 富化超时不超过墓碑 TTL 的一半，
// 墓碑过期后迟到的 Update 会被当成未知确认框
func (c *ConfirmConfig) Normalize() {
	if c.TombstoneTTL <= 0 {
		c.TombstoneTTL = 10 * time.Minute
	}
	if c.EnrichTimeout <= 0 {
		c.EnrichTimeout = 2 * time.Minute
	}
	if ceiling := c.TombstoneTTL / 2; c.EnrichTimeout > ceiling {
		log.Printf("Warning: confirm.enrich_timeout %s exceeds half of tombstone_ttl, clamped to %s", c.EnrichTimeout, ceiling)
		c.EnrichTimeout = ceiling
	}
}

type RefreshConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"` // robfig/cron spec
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// NetworkEntry 每个 scope 对应的 RPC 节点
type NetworkEntry struct {
	Scope  string `mapstructure:"scope"`
	RpcUrl string `mapstructure:"rpc_url"`
}

// ServiceConfig 外部 HTTP 服务 (价格 / 安全扫描)
type ServiceConfig struct {
	BaseUrl    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

var Global Config

func Init() {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath(".")      // optionally look for config in the working directory
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	Global.Confirm.Normalize()

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// RpcURL 按 scope 查找 RPC 地址
func (c Config) RpcURL(scope string) (string, bool) {
	for _, n := range c.Networks {
		if n.Scope == scope {
			return n.RpcUrl, true
		}
	}
	return "", false
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("db.enabled", false)
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "wallet_user")
	viper.SetDefault("db.password", "wallet_password")
	viper.SetDefault("db.name", "wallet_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "wallet_events_confirmation")

	viper.SetDefault("worker.mode", "local")
	viper.SetDefault("worker.concurrency", 10)

	viper.SetDefault("confirm.lifecycle_delay", 500*time.Millisecond)
	viper.SetDefault("confirm.registry_name", "transaction-confirmation")
	viper.SetDefault("confirm.tombstone_ttl", 10*time.Minute)
	viper.SetDefault("confirm.state_key", "wallet:confirm:state")
	viper.SetDefault("confirm.enrich_timeout", 2*time.Minute)

	viper.SetDefault("refresh.enabled", true)
	viper.SetDefault("refresh.schedule", "@every 20s")
	viper.SetDefault("refresh.lock_ttl", 15*time.Second)

	viper.SetDefault("networks", []map[string]string{
		{"scope": "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp", "rpc_url": "https://api.mainnet-beta.solana.com"},
		{"scope": "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1", "rpc_url": "https://api.devnet.solana.com"},
		{"scope": "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z", "rpc_url": "https://api.testnet.solana.com"},
	})

	viper.SetDefault("price.base_url", "https://price.api.cx.metamask.io")
	viper.SetDefault("price.timeout", 5*time.Second)
	viper.SetDefault("price.max_retries", 2)

	viper.SetDefault("scan.base_url", "https://solana.security-alerts.api.cx.metamask.io")
	viper.SetDefault("scan.timeout", 10*time.Second)
	viper.SetDefault("scan.max_retries", 1)
}
