package config

import (
	"os"
	"strconv"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// FCMConfig points at the service-account credentials used by the push channel.
type FCMConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// RealtimeConfig carries the shared secret stamped on every pub/sub signal
// and the client origin used to build notification action URLs.
type RealtimeConfig struct {
	SocketEventSecret string `yaml:"socket_event_secret"`
	ClientBaseURL     string `yaml:"client_base_url"`
}

// UpstreamConfig holds base URLs for the read-only RPCs issued to the
// posts and users services.
type UpstreamConfig struct {
	PostsBaseURL string `yaml:"posts_base_url"`
	UsersBaseURL string `yaml:"users_base_url"`
}

func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

func OverrideFCMFromEnv(cfg *FCMConfig) {
	if path := os.Getenv("FCM_CREDENTIALS_FILE"); path != "" {
		cfg.CredentialsFile = path
	}
}

func OverrideRealtimeFromEnv(cfg *RealtimeConfig) {
	if secret := os.Getenv("SOCKET_EVENT_SECRET"); secret != "" {
		cfg.SocketEventSecret = secret
	}
	if base := os.Getenv("CLIENT_BASE_URL"); base != "" {
		cfg.ClientBaseURL = base
	}
}

func OverrideUpstreamFromEnv(cfg *UpstreamConfig) {
	if url := os.Getenv("POSTS_BASE_URL"); url != "" {
		cfg.PostsBaseURL = url
	}
	if url := os.Getenv("USERS_BASE_URL"); url != "" {
		cfg.UsersBaseURL = url
	}
}
