package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel 是读取日志级别的环境变量。
const EnvLevel = "AUTOWRAP_LOG_LEVEL"

// ParseLevel 解析 DEBUG/INFO/WARN/ERROR，无法识别时返回 fallback。
func ParseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return fallback
	}
}

// LevelFromEnv 从 AUTOWRAP_LOG_LEVEL 读取级别，默认 WARN。
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(EnvLevel), slog.LevelWarn)
}

// New 创建写入 w 的 logger；w 为空时写入 stderr。
func New(w io.Writer, level slog.Level, useJSON bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if useJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
