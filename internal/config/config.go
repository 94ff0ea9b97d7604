package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration for picstash.
type Config struct {
	DataDir   string          `toml:"data_dir"`
	LogDir    string          `toml:"log_dir"`
	Listen    string          `toml:"listen"`
	Blob      BlobConfig      `toml:"blob"`
	Thumbnail ThumbnailConfig `toml:"thumbnail"`
	API       APIConfig       `toml:"api"`
}

// BlobConfig selects the blob storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BlobConfig struct {
	Type string `toml:"type"` // "filesystem" (default), "memory", or "s3"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// ThumbnailConfig holds thumbnail generation settings.
type ThumbnailConfig struct {
	MaxDimension int `toml:"max_dimension"` // longest side of a thumbnail, pixels
	Quality      int `toml:"quality"`       // JPEG quality, 1-100
}

// APIConfig holds HTTP server settings.
type APIConfig struct {
	RequestsPerMinute int   `toml:"requests_per_minute"` // per IP+endpoint; 0 disables limiting
	MaxUploadBytes    int64 `toml:"max_upload_bytes"`
}

// NewConfig creates a Config with defaults rooted at the given base directory.
func NewConfig(baseDir string) *Config {
	return &Config{
		DataDir: filepath.Join(baseDir, "collections"),
		LogDir:  filepath.Join(baseDir, "log"),
		Listen:  ":8080",
		Blob: BlobConfig{
			Type: "filesystem",
		},
		Thumbnail: ThumbnailConfig{
			MaxDimension: 320,
			Quality:      80,
		},
		API: APIConfig{
			RequestsPerMinute: 120,
			MaxUploadBytes:    64 << 20,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path.
// Fails if a config file already exists there.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
