package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Ai           AIConfig
	Dataset      DatasetConfig
	Python       PythonConfig
	Orchestrator OrchestratorConfig
	Telemetry    TelemetryConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	EventTopic         string
}

type AIConfig struct {
	LLMProvider   string // "gemini", "openai", "anthropic" or "ollama"
	LLMModel      string
	Temperature   float64
	MaxIterations int
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AnthropicKey  string
	OllamaBaseURL string
}

type DatasetConfig struct {
	Path string
	URL  string
}

type PythonConfig struct {
	Path           string
	ExecTimeout    time.Duration
	MaxOutputBytes int
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type OrchestratorConfig struct {
	ArtifactRoot       string
	ArtifactPerRequest bool
	Serialize          bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	googleKey := getEnv("GOOGLE_API_KEY", "")
	if googleKey == "" {
		googleKey = getEnv("GEMINI_API_KEY", "")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			EventTopic:         getEnv("QUERY_EVENT_TOPIC", "query.handled"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", ""), // empty picks the provider's default
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0),
			MaxIterations: getEnvAsInt("AGENT_MAX_ITERATIONS", 8),
			GoogleAPIKey:  googleKey,
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Dataset: DatasetConfig{
			Path: getEnv("DATASET_PATH", "titanic.csv"),
			URL:  getEnv("DATASET_URL", "https://raw.githubusercontent.com/datasciencedojo/datasets/master/titanic.csv"),
		},
		Python: PythonConfig{
			Path:           getEnv("PYTHON_PATH", ""),
			ExecTimeout:    getEnvAsDuration("PYTHON_EXEC_TIMEOUT", 60*time.Second),
			MaxOutputBytes: getEnvAsInt("PYTHON_MAX_OUTPUT_BYTES", 8*1024),
		},
		Orchestrator: OrchestratorConfig{
			ArtifactRoot:       getEnv("ARTIFACT_ROOT", "workspace"),
			ArtifactPerRequest: getEnvAsBool("ARTIFACT_PER_REQUEST", true),
			Serialize:          getEnvAsBool("ORCHESTRATOR_SERIALIZE", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "data-chat-be"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
