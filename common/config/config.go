package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all service configuration. It is built once at startup
// and passed by reference into every component.
type Config struct {
	Service   ServiceConfig   `toml:"service"`
	TLS       TLSConfig       `toml:"tls"`
	Storage   StorageConfig   `toml:"storage"`
	Auth      AuthConfig      `toml:"auth"`
	FFmpeg    FFmpegConfig    `toml:"ffmpeg"`
	Cache     CacheConfig     `toml:"cache"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name      string `toml:"-"`
	Port      int    `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// TLSConfig holds the optional HTTPS listener settings
type TLSConfig struct {
	Enabled  bool   `toml:"enabled"`
	Port     int    `toml:"port"`
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// StorageConfig holds the two flat storage roots and the public base
// URLs under which their contents are exposed.
type StorageConfig struct {
	ImageDir     string `toml:"image_dir"`
	VideoDir     string `toml:"video_dir"`
	ImageBaseURL string `toml:"image_base_url"`
	VideoBaseURL string `toml:"video_base_url"`
}

// AuthConfig holds the pre-shared upload token
type AuthConfig struct {
	UploadToken string `toml:"upload_token"`
}

// FFmpegConfig holds the external encoder/prober settings
type FFmpegConfig struct {
	FFmpegPath     string        `toml:"ffmpeg_path"`
	FFprobePath    string        `toml:"ffprobe_path"`
	Timeout        time.Duration `toml:"-"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
	PreviewEnabled bool          `toml:"preview_enabled"`
}

// CacheConfig holds the record cache settings
type CacheConfig struct {
	Enabled    bool          `toml:"enabled"`
	DefaultTTL time.Duration `toml:"-"`
	TTLSeconds int           `toml:"ttl_seconds"`
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool `toml:"enable_pprof"`
	PprofPort   int  `toml:"pprof_port"`
}

// Load builds configuration for the named service. An optional TOML
// file (MEDIAHOST_CONFIG, default config.toml) supplies the base
// values; environment variables override individual fields.
func Load(serviceName string) (*Config, error) {
	cfg := defaults(serviceName)

	path := getEnv("MEDIAHOST_CONFIG", "config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.FFmpeg.TimeoutSeconds > 0 {
		cfg.FFmpeg.Timeout = time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second
	}
	if cfg.Cache.TTLSeconds > 0 {
		cfg.Cache.DefaultTTL = time.Duration(cfg.Cache.TTLSeconds) * time.Second
	}

	return cfg, cfg.Validate()
}

func defaults(serviceName string) *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      serviceName,
			Port:      8080,
			LogLevel:  "info",
			LogFormat: "text",
		},
		TLS: TLSConfig{
			Enabled: false,
			Port:    8443,
		},
		Storage: StorageConfig{
			ImageDir:     "images",
			VideoDir:     "videos",
			ImageBaseURL: "https://img.bergaker.com",
			VideoBaseURL: "https://vid.bergaker.com",
		},
		FFmpeg: FFmpegConfig{
			FFmpegPath:     "ffmpeg",
			FFprobePath:    "ffprobe",
			TimeoutSeconds: 120,
			PreviewEnabled: true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 3600,
		},
		Telemetry: TelemetryConfig{
			EnablePprof: false,
			PprofPort:   6060,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Service.Port = getEnvInt("PORT", cfg.Service.Port)
	cfg.Service.LogLevel = getEnv("LOG_LEVEL", cfg.Service.LogLevel)
	cfg.Service.LogFormat = getEnv("LOG_FORMAT", cfg.Service.LogFormat)

	cfg.TLS.Enabled = getEnvBool("TLS_ENABLED", cfg.TLS.Enabled)
	cfg.TLS.Port = getEnvInt("TLS_PORT", cfg.TLS.Port)
	cfg.TLS.CertFile = getEnv("TLS_CERT_FILE", cfg.TLS.CertFile)
	cfg.TLS.KeyFile = getEnv("TLS_KEY_FILE", cfg.TLS.KeyFile)

	cfg.Storage.ImageDir = getEnv("IMAGE_DIR", cfg.Storage.ImageDir)
	cfg.Storage.VideoDir = getEnv("VIDEO_DIR", cfg.Storage.VideoDir)
	cfg.Storage.ImageBaseURL = getEnv("IMAGE_BASE_URL", cfg.Storage.ImageBaseURL)
	cfg.Storage.VideoBaseURL = getEnv("VIDEO_BASE_URL", cfg.Storage.VideoBaseURL)

	cfg.Auth.UploadToken = getEnv("UPLOAD_TOKEN", cfg.Auth.UploadToken)

	cfg.FFmpeg.FFmpegPath = getEnv("FFMPEG_PATH", cfg.FFmpeg.FFmpegPath)
	cfg.FFmpeg.FFprobePath = getEnv("FFPROBE_PATH", cfg.FFmpeg.FFprobePath)
	cfg.FFmpeg.TimeoutSeconds = getEnvInt("FFMPEG_TIMEOUT_SECONDS", cfg.FFmpeg.TimeoutSeconds)
	cfg.FFmpeg.PreviewEnabled = getEnvBool("PREVIEW_ENABLED", cfg.FFmpeg.PreviewEnabled)

	cfg.Cache.Enabled = getEnvBool("CACHE_ENABLED", cfg.Cache.Enabled)
	cfg.Cache.TTLSeconds = getEnvInt("CACHE_TTL_SECONDS", cfg.Cache.TTLSeconds)

	cfg.Telemetry.EnablePprof = getEnvBool("ENABLE_PPROF", cfg.Telemetry.EnablePprof)
	cfg.Telemetry.PprofPort = getEnvInt("PPROF_PORT", cfg.Telemetry.PprofPort)
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Auth.UploadToken == "" {
		return fmt.Errorf("upload token is required")
	}

	if c.Storage.ImageDir == "" || c.Storage.VideoDir == "" {
		return fmt.Errorf("storage roots are required")
	}

	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return fmt.Errorf("tls enabled but cert_file/key_file missing")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
