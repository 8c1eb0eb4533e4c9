package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server    ServerConfig
	BreweryDB BreweryDBConfig
	Storage   StorageConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	Kafka     KafkaConfig
	Search    SearchConfig
	Digest    DigestConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт webhook-сервера (по умолчанию 8086)
}

type BreweryDBConfig struct {
	BaseURL    string // Базовый URL BreweryDB API
	APIKey     string // Ключ BreweryDB API
	TimeoutSec int    // Таймаут HTTP запросов к каталогу
}

// StorageConfig выбирает бэкенд хранилища записей
// file - встроенные JSON-файлы по каналам, redis - хэши, mongo - коллекции
type StorageConfig struct {
	Backend string // file | redis | mongo
	DataDir string // Каталог для файлового бэкенда
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий бота
}

type SearchConfig struct {
	Limit  int      // Число результатов поиска по умолчанию
	Fields []string // Поля для показа в результатах поиска
}

type DigestConfig struct {
	Enabled  bool
	Schedule string   // Cron-выражение для ежедневного дайджеста
	Channels []string // Каналы, по которым публикуется дайджест
}

type AuthConfig struct {
	Token string // Общий токен webhook (пустой = без проверки)
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8086"),
		},
		BreweryDB: BreweryDBConfig{
			BaseURL:    getEnv("BREWERYDB_BASE_URL", "http://api.brewerydb.com/v2"),
			APIKey:     getEnv("BREWERYDB_API_KEY", ""),
			TimeoutSec: getEnvInt("BREWERYDB_TIMEOUT_SEC", 10),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "file"),
			DataDir: getEnv("STORAGE_DATA_DIR", "./data"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "beerme"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "beer_events"),
		},
		Search: SearchConfig{
			Limit:  getEnvInt("SEARCH_LIMIT", 5),
			Fields: strings.Split(getEnv("SEARCH_FIELDS", "name,style,brewery,abv"), ","),
		},
		Digest: DigestConfig{
			Enabled:  getEnv("DIGEST_ENABLED", "false") == "true",
			Schedule: getEnv("DIGEST_SCHEDULE", "0 17 * * *"),
			Channels: splitNonEmpty(getEnv("DIGEST_CHANNELS", "")),
		},
		Auth: AuthConfig{
			Token: getEnv("WEBHOOK_TOKEN", ""),
		},
	}, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
