package xlog

import (
	"log/slog"
)

// Logger 由 Build 装配的日志器
//
// 内嵌 *slog.Logger，可以直接传给任何接受标准 logger 的组件
// （取 l.Logger 即可）；同时持有构建时的 LevelVar，
// 支持运行期调整级别，对 With/WithGroup 派生出的 logger 同样生效。
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
}

// SetLevel 运行期调整日志级别
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level 返回当前生效的日志级别
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Discard 返回丢弃所有输出的 Logger
//
// 用于测试或显式关闭日志的场景。SetLevel 仍可调用，但不会产生任何输出。
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
		level:  new(slog.LevelVar),
	}
}
