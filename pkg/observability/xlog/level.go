package xlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// 输出格式常量
const (
	// FormatText 人类可读的 key=value 文本格式
	FormatText = "text"

	// FormatJSON 每行一个 JSON 对象，便于采集系统解析
	FormatJSON = "json"
)

// ParseLevel 解析日志级别字符串
//
// 接受 debug/info/warn/warning/error，大小写不敏感，首尾空白被忽略。
// 解析失败时返回 slog.LevelInfo 与错误。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("xlog: unknown level %q", s)
	}
}

// ParseFormat 规范化输出格式字符串
//
// 接受 text/json，大小写不敏感，首尾空白被忽略。
// 空串视为"未配置"，返回默认的 FormatText。
func ParseFormat(s string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON:
		return normalized, nil
	default:
		return "", fmt.Errorf("xlog: unknown format %q", s)
	}
}
