package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"notifyhub/pkg/config"
)

type Config struct {
	DB       config.DBConfig       `yaml:"db"`
	MQ       config.MQConfig       `yaml:"mq"`
	Redis    config.RedisConfig    `yaml:"redis"`
	JWT      config.JWTConfig      `yaml:"jwt"`
	Server   config.ServerConfig   `yaml:"server"`
	FCM      config.FCMConfig      `yaml:"fcm"`
	Realtime config.RealtimeConfig `yaml:"realtime"`
	Upstream config.UpstreamConfig `yaml:"upstream"`

	Consumer struct {
		Workers        int `yaml:"workers"`
		DedupTTLSecond int `yaml:"dedup_ttl_seconds"`
	} `yaml:"consumer"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideFCMFromEnv(&cfg.FCM)
	config.OverrideRealtimeFromEnv(&cfg.Realtime)
	config.OverrideUpstreamFromEnv(&cfg.Upstream)

	if cfg.Consumer.Workers <= 0 {
		cfg.Consumer.Workers = 8
	}
	if cfg.Consumer.DedupTTLSecond <= 0 {
		cfg.Consumer.DedupTTLSecond = 120
	}

	return &cfg
}
