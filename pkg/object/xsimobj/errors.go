package xsimobj

import "errors"

// ============================================================================
// 参数错误
// ============================================================================

var (
	// ErrNilConfig 表示未提供配置。
	ErrNilConfig = errors.New("xsimobj: nil config")

	// ErrNilProvider 表示未提供数据来源。
	ErrNilProvider = errors.New("xsimobj: nil provider")

	// ErrNilFn 表示 With 的回调为空。
	ErrNilFn = errors.New("xsimobj: nil fn")
)

// ============================================================================
// 生命周期与加载错误
// ============================================================================

var (
	// ErrClosed 表示对象已关闭。
	ErrClosed = errors.New("xsimobj: object closed")

	// ErrFieldCycle 表示字段的后处理规则构成循环引用，
	// 如坐标字段与其质心字段互相指向对方。
	ErrFieldCycle = errors.New("xsimobj: field dependency cycle")
)
