package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"parts-catalog/internal/logger"
	"parts-catalog/internal/model"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	AppPort                string
	AppName                string
	Env                    string
	StoreDriver            string
	MongoURI               string
	MongoDBName            string
	MongoCollection        string
	SearchDefaultPageSize  int64
	SearchMaxPageSize      int64
	SearchFacetMode        string
	ShutdownTimeoutMs      int64
	ClientMaxSleepMs       int64
	ExternalGRPC           string
	ExternalHTTP           string
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	RemoteProfilingHttpURI string
	TraceStdout            bool
}

// SafeConfig is the loggable projection of Config (no credentials).
type SafeConfig struct {
	AppPort                string `json:"app_port"`
	AppName                string `json:"app_name"`
	Env                    string `json:"env"`
	StoreDriver            string `json:"store_driver"`
	MongoDBName            string `json:"mongo_db_name"`
	MongoCollection        string `json:"mongo_collection"`
	SearchDefaultPageSize  int64  `json:"search_default_page_size"`
	SearchMaxPageSize      int64  `json:"search_max_page_size"`
	SearchFacetMode        string `json:"search_facet_mode"`
	ShutdownTimeoutMs      int64  `json:"shutdown_timeout_ms"`
	ClientMaxSleepMs       int64  `json:"client_max_sleep_ms"`
	ExternalGRPC           string `json:"external_grpc"`
	ExternalHTTP           string `json:"external_http"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
	TraceStdout            bool   `json:"trace_stdout"`
}

func toSnake(s string) string {
	var out strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && s[i-1] != '_' {
				out.WriteRune('_')
			}
			out.WriteRune(unicode.ToLower(r))
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3001"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + "." + jsonKey(f)

		switch v.Field(i).Kind() {
		case reflect.String:
			attrs = append(attrs, slog.String(key, v.Field(i).String()))
		case reflect.Int, reflect.Int64, reflect.Int32:
			attrs = append(attrs, slog.Int64(key, v.Field(i).Int()))
		case reflect.Bool:
			attrs = append(attrs, slog.Bool(key, v.Field(i).Bool()))
		default:
			attrs = append(attrs, slog.Any(key, v.Field(i).Interface()))
		}
	}
	return attrs
}

// json tag if present, snake_case field name otherwise
func jsonKey(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return toSnake(f.Name)
}

func (c *Config) ToSafeConfig() SafeConfig {
	return SafeConfig{
		AppPort:                c.AppPort,
		AppName:                c.AppName,
		Env:                    c.Env,
		StoreDriver:            c.StoreDriver,
		MongoDBName:            c.MongoDBName,
		MongoCollection:        c.MongoCollection,
		SearchDefaultPageSize:  c.SearchDefaultPageSize,
		SearchMaxPageSize:      c.SearchMaxPageSize,
		SearchFacetMode:        c.SearchFacetMode,
		ShutdownTimeoutMs:      c.ShutdownTimeoutMs,
		ClientMaxSleepMs:       c.ClientMaxSleepMs,
		ExternalGRPC:           c.ExternalGRPC,
		ExternalHTTP:           c.ExternalHTTP,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
		TraceStdout:            c.TraceStdout,
	}
}

// IsProduction enables graceful shutdown paths.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

var log = logger.Instance()
var (
	configInstance *Config
	configOnce     sync.Once
)

func setInt64(varName string, fallback int64) int64 {
	val := os.Getenv(varName)
	if val == "" {
		return fallback
	}

	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil || num < 1 {
		log.Warn("Invalid integer env; using fallback",
			slog.String("name", varName),
			slog.String("value", val),
			slog.Int64("fallback", fallback),
		)
		return fallback
	}
	return num
}

func setString(varName, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(varName)); val != "" {
		return val
	}
	return fallback
}

func setBool(varName string) bool {
	val, err := strconv.ParseBool(os.Getenv(varName))
	return err == nil && val
}

// Load reads .env (optional) and the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	cfg := &Config{
		AppPort:                os.Getenv("APP_PORT"),
		AppName:                os.Getenv("APP_NAME"),
		Env:                    setString("ENV", "development"),
		StoreDriver:            setString("STORE_DRIVER", StoreMongo),
		MongoURI:               os.Getenv("MONGO_URI"),
		MongoDBName:            os.Getenv("MONGO_DB_NAME"),
		MongoCollection:        setString("MONGO_COLLECTION", "products"),
		SearchDefaultPageSize:  setInt64("SEARCH_DEFAULT_PAGE_SIZE", 20),
		SearchMaxPageSize:      setInt64("SEARCH_MAX_PAGE_SIZE", 100),
		SearchFacetMode:        setString("SEARCH_FACET_MODE", model.FacetDisjunctive),
		ShutdownTimeoutMs:      setInt64("SHUTDOWN_TIMEOUT_MS", 10000),
		ClientMaxSleepMs:       setInt64("CLIENT_MAX_SLEEP_MS", 1000),
		ExternalGRPC:           os.Getenv("EXTERNAL_GRPC"),
		ExternalHTTP:           os.Getenv("EXTERNAL_HTTP"),
		RemoteLogHttpURI:       os.Getenv("REMOTE_LOG_HTTP_URI"),
		RemoteTraceRpcURI:      os.Getenv("REMOTE_TRACE_RPC_URI"),
		RemoteProfilingHttpURI: os.Getenv("REMOTE_PROFILING_HTTP_URI"),
		TraceStdout:            setBool("TRACE_STDOUT"),
	}

	var missing []string
	if cfg.AppPort == "" {
		missing = append(missing, "APP_PORT")
	}
	if cfg.AppName == "" {
		missing = append(missing, "APP_NAME")
	}
	if cfg.StoreDriver == StoreMongo {
		if cfg.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
		if cfg.MongoDBName == "" {
			missing = append(missing, "MONGO_DB_NAME")
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.StoreDriver != StoreMongo && cfg.StoreDriver != StoreMemory {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if !model.IsFacetMode(cfg.SearchFacetMode) {
		return nil, fmt.Errorf("unknown SEARCH_FACET_MODE %q", cfg.SearchFacetMode)
	}
	if cfg.SearchDefaultPageSize > cfg.SearchMaxPageSize {
		return nil, fmt.Errorf("SEARCH_DEFAULT_PAGE_SIZE (%d) exceeds SEARCH_MAX_PAGE_SIZE (%d)",
			cfg.SearchDefaultPageSize, cfg.SearchMaxPageSize)
	}

	return cfg, nil
}

func Instance() *Config {
	configOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Error("Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		configInstance = cfg

		if cfg.RemoteLogHttpURI == "" {
			log.Warn("Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			log.Warn("Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			log.Warn("Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		attrs := StructAttrs("data", cfg.ToSafeConfig())
		anyAttrs := make([]any, len(attrs))
		for i, a := range attrs {
			anyAttrs[i] = a
		}
		log.Info("Configuration loaded successfully", anyAttrs...)
	})

	return configInstance
}
