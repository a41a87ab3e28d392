package xlog_test

import (
	"log/slog"
	"testing"

	"github.com/omeyang/simkit/pkg/observability/xlog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		err   bool
	}{
		// 小写
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},

		// 大写与混合大小写
		{"DEBUG", slog.LevelDebug, false},
		{"Info", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},

		// warning 别名
		{"warning", slog.LevelWarn, false},
		{"Warning", slog.LevelWarn, false},

		// 首尾空白
		{" info ", slog.LevelInfo, false},
		{"\terror\n", slog.LevelError, false},

		// 无效输入
		{"", slog.LevelInfo, true},
		{"trace", slog.LevelInfo, true},
		{"in fo", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := xlog.ParseLevel(tt.input)
			if tt.err {
				if err == nil {
					t.Errorf("ParseLevel(%q) should return error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   bool
	}{
		{"text", xlog.FormatText, false},
		{"json", xlog.FormatJSON, false},
		{"TEXT", xlog.FormatText, false},
		{" JSON ", xlog.FormatJSON, false},

		// 空串退回默认格式
		{"", xlog.FormatText, false},
		{"   ", xlog.FormatText, false},

		{"xml", "", true},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := xlog.ParseFormat(tt.input)
			if tt.err {
				if err == nil {
					t.Errorf("ParseFormat(%q) should return error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
