package xobjcache

import (
	"io/fs"
	"log/slog"

	"github.com/omeyang/simkit/internal/cachefile"
	"github.com/omeyang/simkit/pkg/observability/xmetrics"
)

// Options 定义缓存管理器的配置选项。
type Options struct {
	// Prefix 是缓存文件所在目录。
	// 首次 Open 时自动创建（含父目录）。
	// 默认为 "simobj-cache"。
	Prefix string

	// NameTemplate 是缓存文件名模板。
	// 支持 {snap}、{obj}、{mask}、{digest} 占位符，
	// 渲染结果必须是不含路径分隔符的单路径段。
	// 默认为 cachefile.DefaultNameTemplate。
	//
	// 注意：模板决定寻址粒度。省略 {digest} 且其余占位符
	// 无法区分两个身份时会发生碰撞，管理器按身份不符处理，
	// 后写者覆盖先写者。
	NameTemplate string

	// Disabled 为 true 时 Open 返回纯空操作会话，
	// 不建锁文件、不读写磁盘。
	// 默认为 false。
	Disabled bool

	// FileMode 是缓存文件与锁文件的权限位。
	// 默认为 0o644。
	FileMode fs.FileMode

	// Logger 用于记录告警与调试日志。
	// 默认使用 slog.Default()，传入 nil 将禁用日志输出。
	Logger *slog.Logger

	// Observer 接收会话打开与关闭的观测跨度。
	// 默认为空实现。
	Observer xmetrics.Observer
}

// Option 定义配置管理器的函数类型。
type Option func(*Options)

// defaultOptions 返回默认的管理器配置。
func defaultOptions() *Options {
	return &Options{
		Prefix:       "simobj-cache",
		NameTemplate: cachefile.DefaultNameTemplate,
		FileMode:     0o644,
		Logger:       slog.Default(),
		Observer:     xmetrics.NoopObserver{},
	}
}

// WithPrefix 设置缓存目录前缀。
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithNameTemplate 设置缓存文件名模板。
func WithNameTemplate(template string) Option {
	return func(o *Options) {
		o.NameTemplate = template
	}
}

// WithDisabled 设置是否禁用缓存。
func WithDisabled(disabled bool) Option {
	return func(o *Options) {
		o.Disabled = disabled
	}
}

// WithFileMode 设置缓存文件与锁文件的权限位。
func WithFileMode(mode fs.FileMode) Option {
	return func(o *Options) {
		o.FileMode = mode
	}
}

// WithLogger 设置自定义 Logger。
// 传入 nil 将禁用日志输出。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithObserver 设置观测实现。
func WithObserver(observer xmetrics.Observer) Option {
	return func(o *Options) {
		o.Observer = observer
	}
}
