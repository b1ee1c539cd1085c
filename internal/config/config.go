// Package config provides configuration loading and structs for the KissanVaani server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Expansion ExpansionConfig `yaml:"expansion"`
	Engines   EnginesConfig   `yaml:"engines"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the corpus database, vector index, and audio artifacts.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
	ArtifactsDir    string `yaml:"artifacts_dir"`
	CorpusDir       string `yaml:"corpus_dir"`
}

// EmbeddingConfig holds ONNX embedder settings.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds nearest-neighbour search settings.
type RetrievalConfig struct {
	// TopKPerQuery is how many candidates each expanded-query search returns.
	TopKPerQuery int `yaml:"top_k_per_query"`
	// MaxAnswers caps the merged, ranked answer list.
	MaxAnswers int `yaml:"max_answers"`
	// FallbackAnswer is returned when the merged candidate set is empty.
	FallbackAnswer string `yaml:"fallback_answer"`
}

// ExpansionConfig holds the local-term synonym table and phrasing templates.
// Terms map local crop names to canonical English terms; each template must
// contain one %s which is substituted with the canonical term.
type ExpansionConfig struct {
	Terms     map[string]string `yaml:"terms"`
	Templates []string          `yaml:"templates"`
}

// EnginesConfig holds settings for the external engines the pipeline calls.
type EnginesConfig struct {
	FFmpegPath string          `yaml:"ffmpeg_path"`
	Whisper    WhisperConfig   `yaml:"whisper"`
	Translate  TranslateConfig `yaml:"translate"`
	TTS        TTSConfig       `yaml:"tts"`
}

// WhisperConfig holds speech-to-text engine settings. When Endpoint is set,
// the HTTP backend is used; otherwise the local CLI backend.
type WhisperConfig struct {
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
}

// TranslateConfig holds machine-translation engine settings.
type TranslateConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TTSConfig holds text-to-speech engine settings.
type TTSConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WatchConfig holds corpus directory watch settings.
type WatchConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.ArtifactsDir = expandPath(cfg.Storage.ArtifactsDir, configDir)
	if cfg.Storage.CorpusDir != "" {
		cfg.Storage.CorpusDir = expandPath(cfg.Storage.CorpusDir, configDir)
	}
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
