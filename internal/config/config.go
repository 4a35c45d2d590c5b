package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Upload  UploadConfig
	Rag     RagConfig
	Ai      AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
	CleanupTopic       string
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type UploadConfig struct {
	MaxFileSize  int64 // bytes, per file
	MaxFileCount int
}

type RagConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Temperature  float64
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "gemini"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string
	GoogleGeminiKey   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			CleanupTopic:       getEnv("SESSION_CLEANUP_TOPIC_NAME", "SESSION_FILE_RELEASE"),
		},
		Session: SessionConfig{
			TTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Upload: UploadConfig{
			MaxFileSize:  int64(getEnvAsInt("UPLOAD_MAX_FILE_SIZE", 10*1024*1024)),
			MaxFileCount: getEnvAsInt("UPLOAD_MAX_FILE_COUNT", 5),
		},
		Rag: RagConfig{
			ChunkSize:    getEnvAsInt("RAG_CHUNK_SIZE", 600),
			ChunkOverlap: getEnvAsInt("RAG_CHUNK_OVERLAP", 150),
			TopK:         getEnvAsInt("RAG_TOP_K", 3),
			Temperature:  getEnvAsFloat("RAG_TEMPERATURE", 0.2),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	// Plain numbers are milliseconds, matching the original deployment envs.
	if ms, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
