package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Ai       AIConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type CatalogConfig struct {
	CatalogPath    string
	TextIndexPath  string
	ImageIndexPath string
	VectorBackend  string // "memory" or "postgres"
	TextTable      string // pgvector table per space
	ImageTable     string
	TextDim        int
	ImageDim       int
	TopK           int
}

type AIConfig struct {
	TextEmbedBaseURL   string // Ollama-compatible embedding server
	TextEmbedModel     string
	ClipBaseURL        string // CLIP image embedding server
	LLMProvider        string // "groq" or "ollama"
	LLMModel           string
	GroqBaseURL        string
	OllamaBaseURL      string
	SessionCapacity    int
	FetchTimeoutSec    int    // image URL download
	CompleteTimeoutSec int    // LLM completion
}

type APIKeys struct {
	Groq string
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
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "https://app.onecompiler.com"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Catalog: CatalogConfig{
			CatalogPath:    getEnv("CATALOG_PATH", "data/catalog.json"),
			TextIndexPath:  getEnv("TEXT_INDEX_PATH", "data/text.index"),
			ImageIndexPath: getEnv("IMAGE_INDEX_PATH", "data/image.index"),
			VectorBackend:  getEnv("VECTOR_BACKEND", "memory"),
			TextTable:      getEnv("TEXT_EMBEDDING_TABLE", "product_text_embeddings"),
			ImageTable:     getEnv("IMAGE_EMBEDDING_TABLE", "product_image_embeddings"),
			TextDim:        getEnvAsInt("TEXT_EMBEDDING_DIM", 384),
			ImageDim:       getEnvAsInt("IMAGE_EMBEDDING_DIM", 512),
			TopK:           getEnvAsInt("RETRIEVAL_TOP_K", 5),
		},
		Ai: AIConfig{
			TextEmbedBaseURL:   getEnv("TEXT_EMBED_BASE_URL", "http://localhost:11434"),
			TextEmbedModel:     getEnv("TEXT_EMBED_MODEL", "all-minilm"),
			ClipBaseURL:        getEnv("CLIP_BASE_URL", "http://localhost:8090"),
			LLMProvider:        getEnv("LLM_PROVIDER", "groq"),
			LLMModel:           getEnv("LLM_MODEL", "llama3-70b-8192"),
			GroqBaseURL:        getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			SessionCapacity:    getEnvAsInt("SESSION_CAPACITY", 100),
			FetchTimeoutSec:    getEnvAsInt("IMAGE_FETCH_TIMEOUT_SEC", 15),
			CompleteTimeoutSec: getEnvAsInt("LLM_COMPLETE_TIMEOUT_SEC", 120),
		},
		Keys: APIKeys{
			Groq: getEnv("GROQ_API_KEY", ""),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
