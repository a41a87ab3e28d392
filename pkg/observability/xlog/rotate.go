package xlog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值与上限
const (
	// DefaultRotateSizeMB 默认单个日志文件大小上限（MB）
	DefaultRotateSizeMB = 256

	// DefaultRotateBackups 默认保留的历史文件数量
	DefaultRotateBackups = 5

	// DefaultRotateAgeDays 默认历史文件保留天数
	DefaultRotateAgeDays = 28

	// maxRotateSizeMB 单文件大小上限（4 GB）
	maxRotateSizeMB = 4096

	// maxRotateBackups 历史文件数量上限
	maxRotateBackups = 512

	// maxRotateAgeDays 历史文件保留天数上限（约 10 年）
	maxRotateAgeDays = 3650
)

// ErrEmptyRotatePath SetRotation 的日志文件路径为空
var ErrEmptyRotatePath = errors.New("xlog: rotation path is empty")

// rotateConfig 轮转配置
type rotateConfig struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
	localTime  bool
}

// RotateOption 轮转配置选项
type RotateOption func(*rotateConfig)

// WithRotateSize 设置单个日志文件的大小上限（MB），超过后触发轮转
func WithRotateSize(mb int) RotateOption {
	return func(c *rotateConfig) { c.maxSizeMB = mb }
}

// WithRotateBackups 设置保留的历史文件数量，0 表示不按数量清理
func WithRotateBackups(n int) RotateOption {
	return func(c *rotateConfig) { c.maxBackups = n }
}

// WithRotateAge 设置历史文件保留天数，0 表示不按天数清理
func WithRotateAge(days int) RotateOption {
	return func(c *rotateConfig) { c.maxAgeDays = days }
}

// WithRotateCompress 设置是否 gzip 压缩历史文件
func WithRotateCompress(enable bool) RotateOption {
	return func(c *rotateConfig) { c.compress = enable }
}

// WithRotateLocalTime 历史文件名使用本地时间而非 UTC
func WithRotateLocalTime(enable bool) RotateOption {
	return func(c *rotateConfig) { c.localTime = enable }
}

// validate 检查配置取值范围
func (c *rotateConfig) validate() error {
	if c.maxSizeMB <= 0 || c.maxSizeMB > maxRotateSizeMB {
		return fmt.Errorf("xlog: rotation size %dMB out of range (0, %d]", c.maxSizeMB, maxRotateSizeMB)
	}
	if c.maxBackups < 0 || c.maxBackups > maxRotateBackups {
		return fmt.Errorf("xlog: rotation backups %d out of range [0, %d]", c.maxBackups, maxRotateBackups)
	}
	if c.maxAgeDays < 0 || c.maxAgeDays > maxRotateAgeDays {
		return fmt.Errorf("xlog: rotation age %d days out of range [0, %d]", c.maxAgeDays, maxRotateAgeDays)
	}
	return nil
}

// newRotator 创建按大小轮转的日志写入器
func newRotator(path string, opts ...RotateOption) (io.WriteCloser, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyRotatePath
	}

	cfg := rotateConfig{
		maxSizeMB:  DefaultRotateSizeMB,
		maxBackups: DefaultRotateBackups,
		maxAgeDays: DefaultRotateAgeDays,
		compress:   true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.maxSizeMB,
		MaxBackups: cfg.maxBackups,
		MaxAge:     cfg.maxAgeDays,
		Compress:   cfg.compress,
		LocalTime:  cfg.localTime,
	}, nil
}
