// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file, a .env
// file and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when neither flags, the config file nor the environment set a value.
const (
	DefaultPort             = "0.0.0.0:5002"
	DefaultDatabaseDriver   = "sqlite3"
	DefaultDatabaseDSN      = "instance/greenguardian.db"
	DefaultUploadDir        = "instance/uploads"
	DefaultModelPath        = "GreenGuardian_model.tflite"
	DefaultGeminiModel      = "gemini-1.5-flash-latest"
	DefaultRecommendTimeout = 30 * time.Second
	DefaultOrphanInterval   = time.Hour
	DefaultOrphanRetention  = 24 * time.Hour
)

// Duration is a time.Duration that reads "30s"-style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MinioOptions configures the S3-compatible upload backend.
type MinioOptions struct {
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"use_ssl"`
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDriver selects the SQL engine: "sqlite3" or "postgres".
	DatabaseDriver string `json:"database_driver"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// UploadBackend selects where raw uploads are kept: "local" or "minio".
	UploadBackend string `json:"upload_backend"`

	// UploadDir is the directory used by the local upload backend.
	UploadDir string `json:"upload_dir"`

	Minio MinioOptions `json:"minio"`

	// ModelPath points to the classifier artifact. A missing file selects demo mode.
	ModelPath string `json:"model_path"`

	// GeminiAPIKey enables generated recommendations. Empty selects template mode.
	GeminiAPIKey string `json:"gemini_api_key"`

	GeminiModel string `json:"gemini_model"`

	// RecommendTimeout bounds a single call to the text-generation service.
	RecommendTimeout Duration `json:"recommend_timeout"`

	// SessionSecret seeds the session cookie signing and encryption keys.
	SessionSecret string `json:"session_secret"`

	LogLevel string `json:"log_level"`

	// TLSCertFile and TLSKeyFile switch the listener to HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// OrphanInterval and OrphanRetention drive the stale upload cleaner.
	OrphanInterval  Duration `json:"orphan_interval"`
	OrphanRetention Duration `json:"orphan_retention"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = defaultOptions()

func defaultOptions() *Options {
	return &Options{
		Port:             DefaultPort,
		DatabaseDriver:   DefaultDatabaseDriver,
		DatabaseDSN:      DefaultDatabaseDSN,
		UploadBackend:    "local",
		UploadDir:        DefaultUploadDir,
		Minio:            MinioOptions{Region: "us-east-1", Bucket: "greenguardian-uploads"},
		ModelPath:        DefaultModelPath,
		GeminiModel:      DefaultGeminiModel,
		RecommendTimeout: Duration(DefaultRecommendTimeout),
		SessionSecret:    "a-very-secret-key-that-should-be-changed",
		LogLevel:         "info",
		OrphanInterval:   Duration(DefaultOrphanInterval),
		OrphanRetention:  Duration(DefaultOrphanRetention),
		Config:           "config.json",
	}
}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", options.Port, "run on ip:port server")
	flag.StringVar(&options.DatabaseDriver, "driver", options.DatabaseDriver, "database driver (sqlite3|postgres)")
	flag.StringVar(&options.DatabaseDSN, "d", options.DatabaseDSN, "db address")
	flag.StringVar(&options.UploadDir, "u", options.UploadDir, "upload directory")
	flag.StringVar(&options.ModelPath, "m", options.ModelPath, "path to classifier artifact")
	flag.StringVar(&options.LogLevel, "l", options.LogLevel, "log level")
	flag.StringVar(&options.Config, "config", options.Config, "path to config file")
	flag.StringVar(&options.Config, "c", options.Config, "path to config file (shorthand)")
}

// Parse parses the command-line flags, the config file, the .env file and
// environment variables to set configuration values. Later sources win.
// It returns a pointer to the Options struct containing the parsed values.
func Parse() *Options {
	flag.Parse()

	// .env is optional; values already in the environment are not overridden.
	_ = godotenv.Load()

	if err := options.load(os.Getenv); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	return options
}

// load overlays the config file and the environment onto o, then validates it.
func (o *Options) load(getenv func(string) string) error {
	if configPath := getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return fmt.Errorf("read config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	setString(&o.Port, getenv("SERVER_ADDRESS"))
	setString(&o.DatabaseDriver, getenv("DATABASE_DRIVER"))
	setString(&o.DatabaseDSN, getenv("DATABASE_DSN"))
	setString(&o.UploadBackend, getenv("UPLOAD_BACKEND"))
	setString(&o.UploadDir, getenv("UPLOAD_FOLDER"))
	setString(&o.Minio.Endpoint, getenv("MINIO_ENDPOINT"))
	setString(&o.Minio.AccessKey, firstNonEmpty(getenv("MINIO_ACCESS_KEY"), getenv("MINIO_ROOT_USER")))
	setString(&o.Minio.SecretKey, firstNonEmpty(getenv("MINIO_SECRET_KEY"), getenv("MINIO_ROOT_PASSWORD")))
	setString(&o.Minio.Bucket, getenv("MINIO_BUCKET"))
	setString(&o.ModelPath, getenv("MODEL_PATH"))
	setString(&o.GeminiAPIKey, getenv("GEMINI_API_KEY"))
	setString(&o.GeminiModel, getenv("GEMINI_MODEL"))
	setString(&o.SessionSecret, getenv("SECRET_KEY"))
	setString(&o.LogLevel, getenv("LOG_LEVEL"))
	setString(&o.TLSCertFile, getenv("TLS_CERT"))
	setString(&o.TLSKeyFile, getenv("TLS_KEY"))

	if raw := strings.TrimSpace(getenv("MINIO_USE_SSL")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("MINIO_USE_SSL: %w", err)
		}
		o.Minio.UseSSL = v
	}
	for key, dst := range map[string]*Duration{
		"RECOMMEND_TIMEOUT": &o.RecommendTimeout,
		"ORPHAN_INTERVAL":   &o.OrphanInterval,
		"ORPHAN_RETENTION":  &o.OrphanRetention,
	} {
		if raw := strings.TrimSpace(getenv(key)); raw != "" {
			v, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = Duration(v)
		}
	}

	return o.validate()
}

func (o *Options) validate() error {
	switch o.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", o.DatabaseDriver)
	}
	switch o.UploadBackend {
	case "local":
		if o.UploadDir == "" {
			return fmt.Errorf("upload directory is required for the local backend")
		}
	case "minio":
		if o.Minio.Endpoint == "" || o.Minio.Bucket == "" {
			return fmt.Errorf("minio endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("unsupported upload backend %q", o.UploadBackend)
	}
	if (o.TLSCertFile == "") != (o.TLSKeyFile == "") {
		return fmt.Errorf("tls cert and key must be set together")
	}
	if o.OrphanInterval <= 0 {
		return fmt.Errorf("orphan interval must be positive, got %s", time.Duration(o.OrphanInterval))
	}
	if o.OrphanRetention <= 0 {
		return fmt.Errorf("orphan retention must be positive, got %s", time.Duration(o.OrphanRetention))
	}
	if o.RecommendTimeout <= 0 {
		o.RecommendTimeout = Duration(DefaultRecommendTimeout)
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
