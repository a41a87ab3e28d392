package xobjcache

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// =============================================================================
// 接口定义
// =============================================================================

// Manager 定义按身份寻址的缓存管理器接口。
type Manager interface {
	// Open 打开身份对应的缓存会话并加锁。
	// 锁被占用时立即返回 ErrCacheLocked，不等待。
	// 缓存文件不存在或损坏按空缓存处理，会话照常打开。
	Open(ctx context.Context, id xsimid.Identity) (Session, error)

	// Path 返回身份对应的缓存文件路径，不触碰磁盘。
	Path(id xsimid.Identity) (string, error)

	// Prefix 返回缓存目录前缀。
	Prefix() string
}

// Session 定义一次缓存会话。会话在 Open 与 Close 之间独占对应缓存文件。
type Session interface {
	// Identity 返回会话绑定的对象身份。
	Identity() xsimid.Identity

	// Lookup 查询字段。先查本会话暂存，再查打开时的磁盘快照。
	// 返回值是共享引用，调用方不得修改。会话关闭后一律未命中。
	Lookup(name string) (*xarray.Array, bool)

	// Record 暂存字段，Close 时合并写回磁盘。
	// 同名字段后写覆盖先写。值按引用保存，调用方此后不应修改。
	Record(name string, value *xarray.Array) error

	// Fields 返回已知字段名的排序列表（磁盘快照与暂存的并集）。
	Fields() []string

	// Close 合并写回暂存字段并释放锁。
	// 只有首次调用生效，再次调用返回 ErrClosed。
	// 无论合并是否成功，锁都会被释放且只释放一次。
	Close() error
}

// =============================================================================
// 工厂函数
// =============================================================================

// New 创建缓存管理器。
func New(opts ...Option) (Manager, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	prefix := strings.TrimSpace(options.Prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: empty prefix", ErrInvalidPrefix)
	}
	if strings.ContainsRune(prefix, 0) {
		return nil, fmt.Errorf("%w: prefix contains a null byte", ErrInvalidPrefix)
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	return &manager{
		prefix:   filepath.Clean(prefix),
		template: options.NameTemplate,
		disabled: options.Disabled,
		fileMode: options.FileMode,
		logger:   options.Logger,
		observer: options.Observer,
	}, nil
}
