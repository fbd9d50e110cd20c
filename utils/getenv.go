package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func GetEnvDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration は time.ParseDuration 形式の環境変数を読みます。不正値はデフォルトに戻します。
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration env", "key", key, "value", raw, "err", err)
		return defaultValue
	}
	return d
}

// GetEnvFloat は浮動小数点の環境変数を読みます。
func GetEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("invalid float env", "key", key, "value", raw, "err", err)
		return defaultValue
	}
	return f
}

// LogLevel は LOG_LEVEL (debug|info|warn|error) を slog.Level に変換します。
func LogLevel(key string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(GetEnvDefault(key, "info"))); err != nil {
		return slog.LevelInfo
	}
	return level
}
