package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Shopify  ShopifyConfig
	Sync     SyncConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// DatabaseConfig selects the store. Driver is "sqlite3" or "pgx"; the
// Postgres fields are ignored for sqlite3.
type DatabaseConfig struct {
	Driver          string
	SQLitePath      string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// RedisConfig enables the shared store lock. An empty Addr keeps the lock
// in-process.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	LockTTL     int
	LockRetries int
}

// KafkaConfig enables production events in and fulfillment events out. No
// brokers disables both.
type KafkaConfig struct {
	Brokers          []string
	ProductionTopic  string
	FulfillmentTopic string
	GroupID          string
}

// ShopifyConfig picks the order source. Without a shop domain the snapshot
// file is read instead.
type ShopifyConfig struct {
	ShopDomain   string
	AccessToken  string
	APIVersion   string
	Timeout      int
	SnapshotFile string
}

type SyncConfig struct {
	IntervalSeconds int // 0 disables periodic sync
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8090"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite3"),
			SQLitePath:      getEnv("SQLITE_PATH", "fulfillment.db"),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_fulfillment"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			LockTTL:     getEnvInt("REDIS_LOCK_TTL_SECONDS", 30),
			LockRetries: getEnvInt("REDIS_LOCK_RETRIES", 50),
		},
		Kafka: KafkaConfig{
			Brokers:          getEnvSlice("KAFKA_BROKERS", nil),
			ProductionTopic:  getEnv("KAFKA_TOPIC_PRODUCTION", "fulfillment.production"),
			FulfillmentTopic: getEnv("KAFKA_TOPIC_FULFILLMENT", "fulfillment.events"),
			GroupID:          getEnv("KAFKA_GROUP_FULFILLMENT", "fulfillment"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:   getEnv("SHOPIFY_SHOP_DOMAIN", ""),
			AccessToken:  getEnv("SHOPIFY_ACCESS_TOKEN", ""),
			APIVersion:   getEnv("SHOPIFY_API_VERSION", "2024-10"),
			Timeout:      getEnvInt("SHOPIFY_TIMEOUT_SECONDS", 30),
			SnapshotFile: getEnv("ORDER_SNAPSHOT_FILE", "orders.json"),
		},
		Sync: SyncConfig{
			IntervalSeconds: getEnvInt("SYNC_INTERVAL_SECONDS", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
