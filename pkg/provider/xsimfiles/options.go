package xsimfiles

import (
	"log/slog"
	"time"

	"github.com/omeyang/simkit/pkg/observability/xmetrics"
)

// CatalogOptions 定义目录的可选配置。
type CatalogOptions struct {
	// ManifestTTL 是 manifest 缓存的过期时间。
	// 数据集可能被重新生成，过期后下次访问会重读 manifest。
	// 0 表示永不过期。默认 1 分钟。
	ManifestTTL time.Duration

	// ManifestCap 是 manifest 缓存的最大条目数，默认 64。
	ManifestCap int

	// BlockCacheBytes 是列数据缓存的容量上限（字节）。
	// 小于等于 0 时禁用列数据缓存。默认 256 MiB。
	BlockCacheBytes int64

	// ReadAttempts 是单次文件读取的最大尝试次数，默认 3。
	// 共享文件系统上的瞬时失败会按指数退避重试；
	// 文件不存在与上下文取消不重试。
	ReadAttempts uint

	// ReadDelay 是重试的基础退避间隔，默认 50ms。
	ReadDelay time.Duration

	// Logger 用于输出读取与缓存日志。
	// 默认 slog.Default()；显式传 nil 则不输出日志。
	Logger *slog.Logger

	// Observer 用于记录读取操作的指标，默认不记录。
	Observer xmetrics.Observer
}

// CatalogOption 定义目录配置函数。
type CatalogOption func(*CatalogOptions)

// defaultCatalogOptions 返回默认配置。
func defaultCatalogOptions() *CatalogOptions {
	return &CatalogOptions{
		ManifestTTL:     time.Minute,
		ManifestCap:     64,
		BlockCacheBytes: 256 << 20,
		ReadAttempts:    3,
		ReadDelay:       50 * time.Millisecond,
		Logger:          slog.Default(),
		Observer:        xmetrics.NoopObserver{},
	}
}

// WithManifestTTL 设置 manifest 缓存的过期时间。
func WithManifestTTL(ttl time.Duration) CatalogOption {
	return func(o *CatalogOptions) {
		o.ManifestTTL = ttl
	}
}

// WithManifestCap 设置 manifest 缓存的最大条目数。
func WithManifestCap(n int) CatalogOption {
	return func(o *CatalogOptions) {
		if n > 0 {
			o.ManifestCap = n
		}
	}
}

// WithBlockCacheBytes 设置列数据缓存容量，小于等于 0 时禁用。
func WithBlockCacheBytes(n int64) CatalogOption {
	return func(o *CatalogOptions) {
		o.BlockCacheBytes = n
	}
}

// WithReadRetry 设置文件读取的尝试次数与基础退避间隔。
func WithReadRetry(attempts uint, delay time.Duration) CatalogOption {
	return func(o *CatalogOptions) {
		if attempts > 0 {
			o.ReadAttempts = attempts
		}
		if delay > 0 {
			o.ReadDelay = delay
		}
	}
}

// WithCatalogLogger 设置日志器，传 nil 表示不输出日志。
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(o *CatalogOptions) {
		o.Logger = logger
	}
}

// WithCatalogObserver 设置指标观察器。
func WithCatalogObserver(obs xmetrics.Observer) CatalogOption {
	return func(o *CatalogOptions) {
		if obs != nil {
			o.Observer = obs
		}
	}
}
