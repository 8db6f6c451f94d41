package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config holds the client settings after file, .env and environment overrides.
type Config struct {
	APIURL          string
	Storage         string
	StoragePath     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	LogPath         string
	LogLevel        string
	RefreshInterval time.Duration

	// Path is the config file that was consulted, whether or not it existed.
	Path string
}

const (
	defaultConfigPath  = "~/.config/tunesphere/config.toml"
	defaultAPIURL      = "http://localhost:5000/api"
	defaultStoragePath = "~/.local/share/tunesphere/store.toml"
	defaultRedisAddr   = "127.0.0.1:6379"
	defaultLogPath     = "~/.local/state/tunesphere/tunesphere.log"
	defaultLogLevel    = "info"
	defaultRefresh     = 60 * time.Second

	envPrefix = "TUNESPHERE_"
)

// fileConfig is the on-disk TOML layout.
type fileConfig struct {
	APIURL         string `toml:"api_url"`
	Storage        string `toml:"storage"`
	StoragePath    string `toml:"storage_path"`
	RedisAddr      string `toml:"redis_addr"`
	RedisPassword  string `toml:"redis_password,omitempty"`
	RedisDB        int    `toml:"redis_db"`
	LogPath        string `toml:"log_path"`
	LogLevel       string `toml:"log_level"`
	RefreshSeconds int    `toml:"refresh_seconds"`
}

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		Storage:         StorageFile,
		StoragePath:     mustExpand(defaultStoragePath),
		RedisAddr:       defaultRedisAddr,
		LogPath:         mustExpand(defaultLogPath),
		LogLevel:        defaultLogLevel,
		RefreshInterval: defaultRefresh,
		Path:            mustExpand(defaultConfigPath),
	}
}

// Load reads the TOML config at path (or TUNESPHERE_CONFIG, or the default
// location), then applies a .env file from the working directory and
// TUNESPHERE_* environment variables. A missing config file is not an error.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.Path = resolved

	raw, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if raw != nil {
		cfg.merge(*raw)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (*fileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &raw, nil
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) merge(raw fileConfig) {
	setString(&c.APIURL, raw.APIURL)
	setString(&c.Storage, raw.Storage)
	setString(&c.StoragePath, raw.StoragePath)
	setString(&c.RedisAddr, raw.RedisAddr)
	setString(&c.RedisPassword, raw.RedisPassword)
	if raw.RedisDB != 0 {
		c.RedisDB = raw.RedisDB
	}
	setString(&c.LogPath, raw.LogPath)
	setString(&c.LogLevel, raw.LogLevel)
	if raw.RefreshSeconds != 0 {
		c.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second
	}
}

func (c *Config) applyEnv() error {
	setString(&c.APIURL, getEnv("API_URL", ""))
	setString(&c.Storage, getEnv("STORAGE", ""))
	setString(&c.StoragePath, getEnv("STORAGE_PATH", ""))
	setString(&c.RedisAddr, getEnv("REDIS_ADDR", ""))
	setString(&c.RedisPassword, getEnv("REDIS_PASSWORD", ""))
	setString(&c.LogPath, getEnv("LOG_PATH", ""))
	setString(&c.LogLevel, getEnv("LOG_LEVEL", ""))

	db, err := getEnvInt("REDIS_DB", c.RedisDB)
	if err != nil {
		return err
	}
	c.RedisDB = db

	seconds, err := getEnvInt("REFRESH_SECONDS", int(c.RefreshInterval/time.Second))
	if err != nil {
		return err
	}
	c.RefreshInterval = time.Duration(seconds) * time.Second
	return nil
}

func (c *Config) normalize() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case "":
		c.Storage = StorageFile
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageFile, StorageRedis)
	}

	if c.RedisDB < 0 {
		return fmt.Errorf("redis_db must not be negative")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_seconds must be positive")
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	var err error
	if c.StoragePath, err = expandOr(c.StoragePath, defaultStoragePath); err != nil {
		return fmt.Errorf("storage_path: %w", err)
	}
	if c.LogPath, err = expandOr(c.LogPath, defaultLogPath); err != nil {
		return fmt.Errorf("log_path: %w", err)
	}
	return nil
}

// Save writes c as TOML to path (or c.Path), creating directories as needed.
func Save(path string, c Config) error {
	if strings.TrimSpace(path) == "" {
		path = c.Path
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	bytes, err := toml.Marshal(c.file())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(resolved, bytes, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c Config) file() fileConfig {
	return fileConfig{
		APIURL:         c.APIURL,
		Storage:        c.Storage,
		StoragePath:    c.StoragePath,
		RedisAddr:      c.RedisAddr,
		RedisPassword:  c.RedisPassword,
		RedisDB:        c.RedisDB,
		LogPath:        c.LogPath,
		LogLevel:       c.LogLevel,
		RefreshSeconds: int(c.RefreshInterval / time.Second),
	}
}

// Encode renders c as TOML with the Redis password masked.
func (c Config) Encode() (string, error) {
	f := c.file()
	if f.RedisPassword != "" {
		f.RedisPassword = "********"
	}
	bytes, err := toml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(bytes), nil
}

func setString(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

// getEnv gets a TUNESPHERE_ variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets a TUNESPHERE_ variable as int or returns a default value.
func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(envPrefix + key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandOr(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = fallback
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
