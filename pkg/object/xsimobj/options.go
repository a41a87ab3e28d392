package xsimobj

import (
	"log/slog"

	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/storage/xobjcache"
)

// Options 定义对象门面的可选配置。
type Options struct {
	// Logger 用于输出会话与加载日志。
	// 默认 slog.Default()；显式传 nil 则不输出日志。
	Logger *slog.Logger

	// Observer 用于记录打开、取字段、关闭操作的指标，默认不记录。
	Observer xmetrics.Observer

	// Manager 覆盖缓存管理器。默认按配置的 cache 节构造。
	// 注入后配置中的 cache 节不再生效。
	Manager xobjcache.Manager
}

// Option 定义配置函数。
type Option func(*Options)

// defaultOptions 返回默认配置。
func defaultOptions() *Options {
	return &Options{
		Logger:   slog.Default(),
		Observer: xmetrics.NoopObserver{},
	}
}

// WithLogger 设置日志器，传 nil 表示不输出日志。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithObserver 设置指标观察器。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *Options) {
		if obs != nil {
			o.Observer = obs
		}
	}
}

// WithManager 注入自定义缓存管理器。
func WithManager(mgr xobjcache.Manager) Option {
	return func(o *Options) {
		o.Manager = mgr
	}
}
