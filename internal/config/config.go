package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Qdrant     QdrantConfig
	Gemini     GeminiConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Waha       WahaConfig
	Store      StoreConfig
	Recruiting RecruitingConfig
	Dedup      DedupConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	DocType    string
	TopK       int
}

type GeminiConfig struct {
	APIKey       string
	Model        string
	EmbedModel   string
	ModelTimeout time.Duration
}

type StorageConfig struct {
	UploadPath     string
	CVStoragePath  string
	CVPublicPrefix string
	MaxFileSize    int64
}

type WorkerConfig struct {
	Concurrency int
}

// WahaConfig points at the WhatsApp HTTP API gateway.
type WahaConfig struct {
	URL             string
	Session         string
	APIKey          string
	Timeout         time.Duration
	MediaHostFrom   string
	MediaHostTo     string
	SendInterval    time.Duration
	DownloadTimeout time.Duration
}

type StoreConfig struct {
	SheetName string
	Timeout   time.Duration
}

type RecruitingConfig struct {
	Position           string
	Source             string
	Evaluator          string
	HistoryFetchLimit  int
	HistoryWindow      int
	AgentMaxIterations int
}

type DedupConfig struct {
	Capacity int
	Retain   int
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	env := getEnv("ENV", "development")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5005"),
			Env:  env,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recruiter_assistant"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "recruiter_knowledge"),
			DocType:    getEnv("KB_DOC_TYPE", "job_profile"),
			TopK:       getEnvAsInt("KB_TOP_K", 8),
		},
		Gemini: GeminiConfig{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel:   getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			ModelTimeout: getEnvAsDuration("MODEL_TIMEOUT", "60s"),
		},
		Storage: StorageConfig{
			UploadPath:     getEnv("UPLOAD_PATH", "./temp_uploads"),
			CVStoragePath:  getEnv("CV_STORAGE_PATH", "./cv_storage"),
			CVPublicPrefix: getEnv("CV_PUBLIC_PREFIX", "/app/cv_storage/"),
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 8),
		},
		Waha: WahaConfig{
			URL:             strings.TrimRight(getEnv("WAHA_API_URL", "http://waha:3000"), "/"),
			Session:         getEnv("WAHA_SESSION", "default"),
			APIKey:          getEnv("WAHA_API_KEY", ""),
			Timeout:         getEnvAsDuration("WAHA_TIMEOUT", "30s"),
			MediaHostFrom:   getEnv("WAHA_MEDIA_HOST_FROM", "localhost:3000"),
			MediaHostTo:     getEnv("WAHA_MEDIA_HOST_TO", "waha:3000"),
			SendInterval:    getEnvAsDuration("WAHA_SEND_INTERVAL", "200ms"),
			DownloadTimeout: getEnvAsDuration("DOWNLOAD_TIMEOUT", "30s"),
		},
		Store: StoreConfig{
			SheetName: getEnv("CANDIDATE_SHEET", "Candidatos"),
			Timeout:   getEnvAsDuration("STORE_TIMEOUT", "15s"),
		},
		Recruiting: RecruitingConfig{
			Position:           getEnv("RECRUIT_POSITION", "Asesor de Ventas Call Center Movistar"),
			Source:             getEnv("RECRUIT_SOURCE", "Orgánico"),
			Evaluator:          getEnv("RECRUIT_EVALUATOR", "Clara (IA)"),
			HistoryFetchLimit:  getEnvAsInt("HISTORY_FETCH_LIMIT", 10),
			HistoryWindow:      getEnvAsInt("HISTORY_WINDOW", 5),
			AgentMaxIterations: getEnvAsInt("AGENT_MAX_ITERATIONS", 3),
		},
		Dedup: DedupConfig{
			Capacity: getEnvAsInt("DEDUP_CAPACITY", 1000),
			Retain:   getEnvAsInt("DEDUP_RETAIN", 500),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", env != "development"),
			Debug: getEnvAsBool("LOG_DEBUG", env == "development"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
