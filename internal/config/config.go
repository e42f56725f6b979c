package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"flatfile-shop/internal/logger"

	"github.com/joho/godotenv"
)

const (
	defaultAppPort = "3000"
	defaultAppName = "flatfile-shop"
	defaultDataDir = "."
)

type Config struct {
	AppPort                string
	AppName                string
	DataDir                string
	MetricsPort            string
	RemoteLogHttpURI       string
	RemoteTraceRpcURI      string
	TraceStdout            bool
	RemoteProfilingHttpURI string
}

// SafeConfig is the loggable view of Config.
type SafeConfig struct {
	AppPort                string `json:"app_port"`
	AppName                string `json:"app_name"`
	DataDir                string `json:"data_dir"`
	MetricsPort            string `json:"metrics_port"`
	RemoteLogHttpURI       string `json:"remote_log_http_uri"`
	RemoteTraceRpcURI      string `json:"remote_trace_rpc_uri"`
	TraceStdout            bool   `json:"trace_stdout"`
	RemoteProfilingHttpURI string `json:"remote_profiling_http_uri"`
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

// StructAttrs("data", cfg) ➜ []slog.Attr{ slog.String("data.app_port", "3000"), ... }
func StructAttrs(prefix string, s any) []slog.Attr {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	attrs := make([]slog.Attr, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		key := prefix + "." + jsonKey(t.Field(i))

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
		DataDir:                c.DataDir,
		MetricsPort:            c.MetricsPort,
		RemoteLogHttpURI:       c.RemoteLogHttpURI,
		RemoteTraceRpcURI:      c.RemoteTraceRpcURI,
		TraceStdout:            c.TraceStdout,
		RemoteProfilingHttpURI: c.RemoteProfilingHttpURI,
	}
}

var (
	configInstance *Config
	configOnce     sync.Once
)

func getEnv(name, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(name)); val != "" {
		return val
	}
	return fallback
}

func validPort(name, val string) error {
	port, err := strconv.Atoi(val)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %q: must be a number between 1 and 65535", name, val)
	}
	return nil
}

// Load reads configuration from the environment. The environment has already
// been populated from .env when called through Instance.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort:                getEnv("APP_PORT", defaultAppPort),
		AppName:                getEnv("APP_NAME", defaultAppName),
		DataDir:                getEnv("DATA_DIR", defaultDataDir),
		MetricsPort:            getEnv("METRICS_PORT", ""),
		RemoteLogHttpURI:       getEnv("REMOTE_LOG_HTTP_URI", ""),
		RemoteTraceRpcURI:      getEnv("REMOTE_TRACE_RPC_URI", ""),
		RemoteProfilingHttpURI: getEnv("REMOTE_PROFILING_HTTP_URI", ""),
	}

	if raw := getEnv("TRACE_STDOUT", ""); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACE_STDOUT %q: %w", raw, err)
		}
		cfg.TraceStdout = b
	}

	if err := validPort("APP_PORT", cfg.AppPort); err != nil {
		return nil, err
	}
	if cfg.MetricsPort != "" {
		if err := validPort("METRICS_PORT", cfg.MetricsPort); err != nil {
			return nil, err
		}
		if cfg.MetricsPort == cfg.AppPort {
			return nil, fmt.Errorf("METRICS_PORT must differ from APP_PORT (%s)", cfg.AppPort)
		}
	}

	return cfg, nil
}

func Instance() *Config {
	configOnce.Do(func() {
		ctx := context.Background()

		if err := godotenv.Load(); err != nil {
			logger.Warn(ctx, "No .env file found, using system environment variables")
		}

		cfg, err := Load()
		if err != nil {
			logger.Error(ctx, "Invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		configInstance = cfg

		if cfg.RemoteLogHttpURI == "" {
			logger.Warn(ctx, "Missing REMOTE_LOG_HTTP_URI will skip sending log")
		}
		if cfg.RemoteTraceRpcURI == "" {
			logger.Warn(ctx, "Missing REMOTE_TRACE_RPC_URI will skip sending trace")
		}
		if cfg.RemoteProfilingHttpURI == "" {
			logger.Warn(ctx, "Missing REMOTE_PROFILING_HTTP_URI will skip sending profiling")
		}

		logger.Info(ctx, "Configuration loaded successfully", StructAttrs("data", cfg.ToSafeConfig())...)
	})

	return configInstance
}
