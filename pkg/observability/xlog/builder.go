package xlog

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// ReplaceAttrFunc 属性替换函数
//
// 在属性写出前被 handler 调用，可用于字段重命名、敏感值脱敏或过滤。
// 返回零值 Attr（空 Key）表示丢弃该属性。
//
// 参数：
//   - groups: 当前属性所在的分组路径
//   - a: 原始属性
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Builder 日志装配器
//
// 链式调用收集配置，Set* 过程中的错误被记住并由 Build 返回。
// 一个 Builder 只应 Build 一次：SetRotation 创建的轮转文件
// 由 Build 返回的 cleanup 函数负责关闭。
type Builder struct {
	output      io.Writer
	levelVar    *slog.LevelVar
	format      string
	addSource   bool
	replaceAttr ReplaceAttrFunc
	rotator     io.WriteCloser
	err         error
}

// New 创建装配器
//
// 默认输出到 stderr、Info 级别、text 格式。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   FormatText,
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// SetLevel 设置初始日志级别
func (b *Builder) SetLevel(level slog.Level) *Builder {
	b.levelVar.Set(level)
	return b
}

// SetLevelString 通过字符串设置日志级别
//
// 接受 ParseLevel 认可的取值，便于直接接入命令行参数或配置项。
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json，空串等价于 text
func (b *Builder) SetFormat(format string) *Builder {
	normalized, err := ParseFormat(format)
	if err != nil {
		b.err = err
		return b
	}
	b.format = normalized
	return b
}

// SetAddSource 是否在日志中记录源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetReplaceAttr 设置属性替换函数
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// SetRotation 把输出切换为按大小轮转的日志文件
//
// path 为当前日志文件路径。文件惰性打开：首次写入时才创建
// （含父目录），创建后从未写入就 cleanup 不会留下空文件。
func (b *Builder) SetRotation(path string, opts ...RotateOption) *Builder {
	rotator, err := newRotator(path, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.rotator = rotator
	b.output = rotator
	return b
}

// Build 装配 Logger
//
// 返回值：
//   - *Logger: 日志器，内嵌 *slog.Logger 并支持动态级别
//   - func() error: 资源释放函数，可多次调用，仅首次生效
//   - error: Set* 过程中记录的配置错误
func (b *Builder) Build() (*Logger, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}

	var handler slog.Handler
	if b.format == FormatJSON {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}

	logger := &Logger{
		Logger: slog.New(handler),
		level:  b.levelVar,
	}
	return logger, b.createCleanup(), nil
}

// createCleanup 生成幂等的资源释放函数
func (b *Builder) createCleanup() func() error {
	var once sync.Once
	rotator := b.rotator

	return func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
}
