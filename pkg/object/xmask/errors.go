package xmask

import "errors"

// ============================================================================
// 注册表错误
// ============================================================================

var (
	// ErrUnknownBuilder 表示注册表中没有该名字的构建器。
	ErrUnknownBuilder = errors.New("xmask: unknown builder")

	// ErrDuplicateBuilder 表示该名字已被注册。
	ErrDuplicateBuilder = errors.New("xmask: duplicate builder")

	// ErrBadParams 表示构建器参数缺失或类型不符。
	ErrBadParams = errors.New("xmask: bad builder params")
)

// ============================================================================
// 构建期错误
// ============================================================================

var (
	// ErrMissingComponent 表示对象标识缺少构建器需要的分量。
	ErrMissingComponent = errors.New("xmask: missing object component")

	// ErrMissingArg 表示掩码参数缺少构建器需要的项。
	ErrMissingArg = errors.New("xmask: missing mask arg")

	// ErrNoMatch 表示没有任何行匹配对象标识。
	ErrNoMatch = errors.New("xmask: no row matches object")

	// ErrBadField 表示前置字段的类型或形状不符合构建器要求。
	ErrBadField = errors.New("xmask: unusable prerequisite field")
)
