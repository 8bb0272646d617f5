package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the retrieval engine configuration
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Storage   StorageConfig   `toml:"storage"`
	LLM       LLMConfig       `toml:"llm"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Ingest    IngestConfig    `toml:"ingest"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level     string   `toml:"level"`     // debug, info, warn, error
	Output    []string `toml:"output"`    // "stdout" and/or "file"
	Directory string   `toml:"directory"` // log file directory when "file" output is enabled
}

// StorageConfig represents storage configuration
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete existing database on startup (development only)
}

// LLMConfig represents language model provider configuration
type LLMConfig struct {
	Provider       string  `toml:"provider" validate:"oneof=gemini claude mock"` // embedding/chat provider
	GoogleAPIKey   string  `toml:"google_api_key"`
	AnthropicKey   string  `toml:"anthropic_api_key"`
	EmbedModelName string  `toml:"embed_model_name"`
	ChatModelName  string  `toml:"chat_model_name"`
	EmbedDimension int     `toml:"embed_dimension" validate:"gt=0"`
	Temperature    float32 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	Timeout        string  `toml:"timeout"`        // e.g., "30s" - per provider call
	RatePerSecond  float64 `toml:"rate_per_second"` // embedding call rate limit, 0 = unlimited
}

// ChunkingConfig represents chunker parameters
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size" validate:"gt=0"`
	Overlap   int `toml:"overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// RetrievalConfig represents hybrid retriever parameters
type RetrievalConfig struct {
	TopK            int     `toml:"top_k" validate:"gt=0"`
	FetchMultiplier int     `toml:"fetch_multiplier" validate:"gt=0"`
	MinFetch        int     `toml:"min_fetch" validate:"gt=0"`
	Lambda          float64 `toml:"lambda" validate:"gte=0,lte=1"` // MMR relevance/diversity trade-off
	HardCap         int     `toml:"hard_cap" validate:"gt=0"`      // absolute result set bound
}

// IngestConfig represents ingestion pipeline parameters
type IngestConfig struct {
	EmbedBatchSize int `toml:"embed_batch_size" validate:"gt=0"` // chunks per embedding call
}

// NewDefaultConfig returns a config with sane defaults
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/reperio",
			},
		},
		LLM: LLMConfig{
			Provider:       "mock",
			EmbedModelName: "gemini-embedding-001",
			ChatModelName:  "gemini-2.0-flash",
			EmbedDimension: 768,
			Temperature:    0.2,
			MaxTokens:      8192,
			Timeout:        "30s",
			RatePerSecond:  0,
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			FetchMultiplier: 4,
			MinFetch:        20,
			Lambda:          0.6,
			HardCap:         12,
		},
		Ingest: IngestConfig{
			EmbedBatchSize: 100,
		},
	}
}

// LoadFromFile loads configuration from a TOML file, applies environment
// overrides, and validates the result. A missing file yields defaults.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			if err := config.Validate(); err != nil {
				return nil, err
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its declared constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if level := os.Getenv("REPERIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if badgerPath := os.Getenv("REPERIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if provider := os.Getenv("REPERIO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if apiKey := os.Getenv("REPERIO_LLM_GOOGLE_API_KEY"); apiKey != "" {
		config.LLM.GoogleAPIKey = apiKey
	} else if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.LLM.GoogleAPIKey = apiKey
	}
	if apiKey := os.Getenv("REPERIO_LLM_ANTHROPIC_API_KEY"); apiKey != "" {
		config.LLM.AnthropicKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.LLM.AnthropicKey = apiKey
	}
	if dimension := os.Getenv("REPERIO_LLM_EMBED_DIMENSION"); dimension != "" {
		if d, err := strconv.Atoi(dimension); err == nil {
			config.LLM.EmbedDimension = d
		}
	}
	if timeout := os.Getenv("REPERIO_LLM_TIMEOUT"); timeout != "" {
		config.LLM.Timeout = timeout
	}
	if chunkSize := os.Getenv("REPERIO_CHUNK_SIZE"); chunkSize != "" {
		if s, err := strconv.Atoi(chunkSize); err == nil {
			config.Chunking.ChunkSize = s
		}
	}
	if overlap := os.Getenv("REPERIO_CHUNK_OVERLAP"); overlap != "" {
		if o, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = o
		}
	}
	if topK := os.Getenv("REPERIO_RETRIEVAL_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.Retrieval.TopK = k
		}
	}
}
