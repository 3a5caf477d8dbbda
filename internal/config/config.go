package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB       DatabaseConfig
	Redis    RedisConfig
	Dataset  DatasetConfig
	Detector DetectorConfig
	OCR      OCRConfig
	Cache    CacheConfig
	Worker   WorkerConfig
	S3       S3Config
	AWS      AWSConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// DatasetConfig locates the reference CSV directory and sets the fuzzy
// match threshold.
type DatasetConfig struct {
	Dir       string
	Threshold float64
}

// DetectorConfig points at the field-detection sidecar.
type DetectorConfig struct {
	URL           string
	MinConfidence float64
	Timeout       time.Duration
}

// OCRConfig selects the default engine and configures the optional ones.
type OCRConfig struct {
	DefaultEngine     string
	TesseractLanguage string
	EasyOCRURL        string
	EasyOCRTimeout    time.Duration
}

// CacheConfig sets the extraction result cache lifetime.
type CacheConfig struct {
	ResultTTL time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	RetentionInterval time.Duration
	RetentionMaxAge   time.Duration
}

// S3Config contains AWS S3 configuration for document archival.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// AWSConfig contains AWS general configuration.
type AWSConfig struct {
	AccessKeyID       string
	SecretAccessKey   string
	RekognitionRegion string // ap-southeast-1 (Singapore)
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Reference datasets
	cfg.Dataset = DatasetConfig{
		Dir:       getEnv("DATASET_DIR", "data"),
		Threshold: getEnvFloat("DATASET_MATCH_THRESHOLD", 0.7),
	}

	// Field detector sidecar
	cfg.Detector = DetectorConfig{
		URL:           getEnv("DETECTOR_URL", "http://localhost:9001"),
		MinConfidence: getEnvFloat("DETECTOR_MIN_CONFIDENCE", 0.5),
	}

	// OCR engines
	cfg.OCR = OCRConfig{
		DefaultEngine:     getEnv("OCR_DEFAULT_ENGINE", "tesseract"),
		TesseractLanguage: getEnv("TESSERACT_LANGUAGE", "ind"),
		EasyOCRURL:        getEnv("EASYOCR_URL", ""),
	}

	// S3 (AWS Jakarta region)
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-southeast-3"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", "https://s3.ap-southeast-3.amazonaws.com"),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// AWS General (Rekognition OCR engine)
	cfg.AWS = AWSConfig{
		AccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		RekognitionRegion: getEnv("AWS_REKOGNITION_REGION", "ap-southeast-1"),
	}

	// Durations
	var err error
	if cfg.Detector.Timeout, err = parseDurationEnv("DETECTOR_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid DETECTOR_TIMEOUT: %w", err)
	}
	if cfg.OCR.EasyOCRTimeout, err = parseDurationEnv("EASYOCR_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid EASYOCR_TIMEOUT: %w", err)
	}
	if cfg.Cache.ResultTTL, err = parseDurationEnv("RESULT_CACHE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid RESULT_CACHE_TTL: %w", err)
	}
	if cfg.Worker.RetentionInterval, err = parseDurationEnv("RETENTION_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid RETENTION_INTERVAL: %w", err)
	}
	if cfg.Worker.RetentionMaxAge, err = parseDurationEnv("RETENTION_MAX_AGE", "720h"); err != nil {
		return nil, fmt.Errorf("invalid RETENTION_MAX_AGE: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
