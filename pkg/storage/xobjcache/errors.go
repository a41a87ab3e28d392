package xobjcache

import "errors"

// =============================================================================
// 会话生命周期错误
// =============================================================================

var (
	// ErrCacheLocked 表示缓存已被其他会话持有。
	// 管理器不等待不重试，调用方可稍后再试或检查残留锁。
	ErrCacheLocked = errors.New("xobjcache: cache is locked by another session")

	// ErrClosed 表示会话已关闭。
	ErrClosed = errors.New("xobjcache: session already closed")

	// ErrLockLost 表示关闭时锁文件已不存在。
	// 锁在会话期间被外部删除，互斥保证在此期间可能已失效。
	ErrLockLost = errors.New("xobjcache: lock file vanished while held")
)

// =============================================================================
// 参数错误
// =============================================================================

var (
	// ErrInvalidPrefix 表示缓存目录前缀无效。
	ErrInvalidPrefix = errors.New("xobjcache: invalid cache prefix")

	// ErrEmptyFieldName 表示字段名为空字符串。
	ErrEmptyFieldName = errors.New("xobjcache: empty field name")

	// ErrNilField 表示字段值为 nil。
	ErrNilField = errors.New("xobjcache: nil field value")
)
