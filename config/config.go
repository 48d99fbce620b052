package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Values come from config/config.json (grouped sections) and can be overridden by environment
// variables derived from the key: db.host -> DB_HOST, admin.secret -> ADMIN_SECRET.
type AppConfig struct {
	AppPort string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLitePath  string
	// Admin secret accepted in the x-admin-pass header
	AdminSecret string
	// Optional signed session tokens issued at login
	SessionSecret   string
	SessionTTLHours int
	// HTTP
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Uploaded images
	StorageDriver string
	UploadDir     string
	StaticPrefix  string
	MaxUploadMB   int
	// S3 compatible object storage
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3KeyPrefix     string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	// Redis for the leaderboard cache
	RedisEnabled    bool
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	c, err := Parse("config")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Parse builds a configuration from defaults, an optional config.json inside dir and the environment.
// It does not touch the cached configuration.
func Parse(dir string) (AppConfig, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	// Precedence: defaults -> config file -> environment variable overrides
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c := AppConfig{
		AppPort:            v.GetString("app.port"),
		GinMode:            v.GetString("gin.mode"),
		GinPath:            v.GetString("gin.path"),
		DBDriver:           strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
		DatabaseURI:        v.GetString("db.uri"),
		DBHost:             v.GetString("db.host"),
		DBPort:             v.GetString("db.port"),
		DBUser:             v.GetString("db.user"),
		DBPassword:         v.GetString("db.password"),
		DBName:             v.GetString("db.name"),
		SQLitePath:         v.GetString("db.sqlite_path"),
		AdminSecret:        v.GetString("admin.secret"),
		SessionSecret:      v.GetString("session.secret"),
		SessionTTLHours:    v.GetInt("session.ttl_hours"),
		AllowedOrigins:     readList(v, "cors.allowed_origins"),
		RateLimitPerMinute: v.GetInt("rate.limit_per_minute"),
		StorageDriver:      strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		UploadDir:          v.GetString("storage.upload_dir"),
		StaticPrefix:       v.GetString("storage.static_prefix"),
		MaxUploadMB:        v.GetInt("storage.max_upload_mb"),
		S3Bucket:           v.GetString("s3.bucket"),
		S3Region:           v.GetString("s3.region"),
		S3Endpoint:         v.GetString("s3.endpoint"),
		S3KeyPrefix:        v.GetString("s3.key_prefix"),
		S3AccessKey:        v.GetString("s3.access_key"),
		S3SecretKey:        v.GetString("s3.secret_key"),
		S3PublicBaseURL:    v.GetString("s3.public_base_url"),
		RedisEnabled:       v.GetBool("redis.enabled"),
		RedisHost:          v.GetString("redis.host"),
		RedisPort:          v.GetInt("redis.port"),
		RedisDB:            v.GetInt("redis.db"),
		RedisPassword:      v.GetString("redis.password"),
		CacheTTLSeconds:    v.GetInt("redis.cache_ttl_seconds"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		LogPath:            v.GetString("log.path"),
		LogMaxSizeMB:       v.GetInt("log.max_size_mb"),
		LogMaxBackups:      v.GetInt("log.max_backups"),
		LogMaxAgeDays:      v.GetInt("log.max_age_days"),
		LogCompress:        v.GetBool("log.compress"),
	}

	if err := c.validate(); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

func (c AppConfig) validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3 storage requires s3.bucket")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("storage.max_upload_mb must be positive")
	}
	return nil
}

// applyDefaults sets sane defaults for every key.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8000")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("gin.path", "logs/go_gin.log")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.uri", "")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "bootcamp")
	v.SetDefault("db.sqlite_path", "data/bootcamp.db")

	// the existing web client ships with this value
	v.SetDefault("admin.secret", "admin1234")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl_hours", 24*7)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("rate.limit_per_minute", 120)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.static_prefix", "/static")
	v.SetDefault("storage.max_upload_mb", 50)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.key_prefix", "uploads")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.public_base_url", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.cache_ttl_seconds", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)
}

// readList accepts either a JSON array or a comma separated string (env form).
func readList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).(string); ok {
		return splitAndTrim(raw)
	}
	return v.GetStringSlice(key)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
