package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Redis    RedisConfig
	Cleanup  CleanupConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type UploadConfig struct {
	TempDir        string
	UploadsDir     string
	MaxFileSize    int64 // bytes, spec ceiling 5 GiB
	MinChunkSize   int64 // bytes, spec floor 5 KiB
	MaxChunkSize   int64 // bytes, spec ceiling 100 MiB
	MaxTotalChunks int
	StaleAfterSecs int64
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig selects and configures the BlobStore backend. Backend is
// "local" or "s3"; the S3 fields are ignored otherwise.
type StorageConfig struct {
	Backend        string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKeyID  string
	S3SecretKey    string
	S3KeyPrefix    string
	S3UsePathStyle bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CleanupConfig struct {
	CronSchedule string
}

func Load() *Config {
	// Missing .env is not an error: production deployments set real
	// environment variables instead of shipping a file.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "3000"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Upload: UploadConfig{
			TempDir:        getEnv("UPLOAD_TEMP_DIR", "./data/temp_uploads"),
			UploadsDir:     getEnv("UPLOAD_DIR", "./data/uploads"),
			MaxFileSize:    getEnvAsInt64("UPLOAD_MAX_FILE_SIZE", 5*1024*1024*1024),
			MinChunkSize:   getEnvAsInt64("UPLOAD_MIN_CHUNK_SIZE", 5*1024),
			MaxChunkSize:   getEnvAsInt64("UPLOAD_MAX_CHUNK_SIZE", 100*1024*1024),
			MaxTotalChunks: int(getEnvAsInt64("UPLOAD_MAX_TOTAL_CHUNKS", 10000)),
			StaleAfterSecs: getEnvAsInt64("UPLOAD_STALE_AFTER_SECONDS", 24*3600),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "catalog_ingest"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "local"),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKeyID:  getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:    getEnv("S3_SECRET_ACCESS_KEY", ""),
			S3KeyPrefix:    getEnv("S3_KEY_PREFIX", ""),
			S3UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvAsInt64("REDIS_DB", 0)),
		},
		Cleanup: CleanupConfig{
			CronSchedule: getEnv("CLEANUP_CRON_SCHEDULE", "*/15 * * * *"),
		},
	}

	if err := os.MkdirAll(cfg.Upload.TempDir, 0o755); err != nil {
		panic(err)
	}
	if err := os.MkdirAll(cfg.Upload.UploadsDir, 0o755); err != nil {
		panic(err)
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
