package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"bioassist/internal/domain"
)

// OllamaConfig holds connection details for the local model-serving daemon.
type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	EmbeddingModel string `yaml:"embedding_model"`
	LLMModel       string `yaml:"llm_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// ChunkingConfig configures how documents are split into chunks.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// StoreConfig configures the persisted vector store.
type StoreConfig struct {
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
}

// AgentConfig configures retrieval and generation behavior.
type AgentConfig struct {
	MaxContextChunks int     `yaml:"max_context_chunks"`
	ContextMode      string  `yaml:"context_mode"`
	Temperature      float32 `yaml:"temperature"`
}

// ServerConfig configures the chat web UI.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	DataDir  string         `yaml:"data_dir"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Store    StoreConfig    `yaml:"store"`
	Agent    AgentConfig    `yaml:"agent"`
	Server   ServerConfig   `yaml:"server"`
}

// Mode returns the configured context mode as a domain type.
func (c *AppConfig) Mode() domain.ContextMode {
	return domain.ContextMode(c.Agent.ContextMode)
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/bioassist/config.yaml.
// If neither exists, it writes defaults to ~/.config/bioassist/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations that would misbehave at run time.
func (c *AppConfig) Validate() error {
	if !c.Mode().Valid() {
		return fmt.Errorf("unknown context mode %q (want %q or %q)",
			c.Agent.ContextMode, domain.ContextStrict, domain.ContextRegular)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunk overlap %d must be in [0, size %d)",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Agent.MaxContextChunks <= 0 {
		return fmt.Errorf("max context chunks must be positive, got %d", c.Agent.MaxContextChunks)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bioassist", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		DataDir: "data",
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434/v1",
			EmbeddingModel: "nomic-embed-text",
			LLMModel:       "gemma:2b",
			TimeoutSecs:    120,
		},
		Chunking: ChunkingConfig{Size: 1000, Overlap: 200},
		Store:    StoreConfig{Path: ".kb_store", Collection: "bio_knowledge_base"},
		Agent: AgentConfig{
			MaxContextChunks: 5,
			ContextMode:      string(domain.ContextRegular),
			Temperature:      0.2,
		},
		Server: ServerConfig{Addr: "localhost:8080"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = def.Ollama.BaseURL
	}
	if cfg.Ollama.EmbeddingModel == "" {
		cfg.Ollama.EmbeddingModel = def.Ollama.EmbeddingModel
	}
	if cfg.Ollama.LLMModel == "" {
		cfg.Ollama.LLMModel = def.Ollama.LLMModel
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = def.Ollama.TimeoutSecs
	}
	if cfg.Chunking.Size == 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = def.Chunking.Overlap
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = def.Store.Collection
	}
	if cfg.Agent.MaxContextChunks == 0 {
		cfg.Agent.MaxContextChunks = def.Agent.MaxContextChunks
	}
	if cfg.Agent.ContextMode == "" {
		cfg.Agent.ContextMode = def.Agent.ContextMode
	}
	if cfg.Agent.Temperature == 0 {
		cfg.Agent.Temperature = def.Agent.Temperature
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
}
