package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where stayscout stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your stayscout instance.
	InstanceURL string

	// AI Configuration
	AIEnabled            bool   // STAYSCOUT_AI_ENABLED
	AIEmbeddingProvider  string // STAYSCOUT_AI_EMBEDDING_PROVIDER (default: openai)
	AILLMProvider        string // STAYSCOUT_AI_LLM_PROVIDER (default: openai)
	AISiliconFlowAPIKey  string // STAYSCOUT_AI_SILICONFLOW_API_KEY
	AISiliconFlowBaseURL string // STAYSCOUT_AI_SILICONFLOW_BASE_URL (default: https://api.siliconflow.cn/v1)
	AIOpenAIAPIKey       string // STAYSCOUT_AI_OPENAI_API_KEY
	AIOpenAIBaseURL      string // STAYSCOUT_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIOllamaBaseURL      string // STAYSCOUT_AI_OLLAMA_BASE_URL (default: http://localhost:11434)
	AIEmbeddingModel     string // STAYSCOUT_AI_EMBEDDING_MODEL (default: text-embedding-3-small)
	AIEmbeddingDims      int    // STAYSCOUT_AI_EMBEDDING_DIMS (default: 1536)
	AILLMModel           string // STAYSCOUT_AI_LLM_MODEL (default: gpt-4o-mini)
	AIRerankEnabled      bool   // STAYSCOUT_AI_RERANK_ENABLED (default: false)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and at least one API key or base URL is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AISiliconFlowAPIKey != "" || p.AIOpenAIAPIKey != "" || p.AIOllamaBaseURL != "")
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("STAYSCOUT_AI_ENABLED") == "true"
	p.AIEmbeddingProvider = getEnvOrDefault("STAYSCOUT_AI_EMBEDDING_PROVIDER", "openai")
	p.AILLMProvider = getEnvOrDefault("STAYSCOUT_AI_LLM_PROVIDER", "openai")
	p.AISiliconFlowAPIKey = os.Getenv("STAYSCOUT_AI_SILICONFLOW_API_KEY")
	p.AISiliconFlowBaseURL = getEnvOrDefault("STAYSCOUT_AI_SILICONFLOW_BASE_URL", "https://api.siliconflow.cn/v1")
	p.AIOpenAIAPIKey = os.Getenv("STAYSCOUT_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("STAYSCOUT_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIOllamaBaseURL = getEnvOrDefault("STAYSCOUT_AI_OLLAMA_BASE_URL", "http://localhost:11434")
	p.AIEmbeddingModel = getEnvOrDefault("STAYSCOUT_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.AILLMModel = getEnvOrDefault("STAYSCOUT_AI_LLM_MODEL", "gpt-4o-mini")
	p.AIRerankEnabled = os.Getenv("STAYSCOUT_AI_RERANK_ENABLED") == "true"
	if dims := os.Getenv("STAYSCOUT_AI_EMBEDDING_DIMS"); dims != "" {
		if _, err := fmt.Sscanf(dims, "%d", &p.AIEmbeddingDims); err != nil {
			p.AIEmbeddingDims = 0
		}
	}
	if p.AIEmbeddingDims == 0 {
		p.AIEmbeddingDims = 1536
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "stayscout")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/stayscout"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("stayscout_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
