package xarray

import "errors"

var (
	// ErrKindMismatch 表示访问器或操作与数组元素类型不匹配。
	ErrKindMismatch = errors.New("xarray: kind mismatch")

	// ErrShapeMismatch 表示形状与数据长度不一致，或操作要求的形状不满足。
	ErrShapeMismatch = errors.New("xarray: shape mismatch")

	// ErrNotScalar 表示数组不是单元素标量。
	ErrNotScalar = errors.New("xarray: not a scalar")

	// ErrBadMask 表示掩码与数组行数不匹配。
	ErrBadMask = errors.New("xarray: mask does not fit array")

	// ErrBadRange 表示区间掩码的端点非法。
	ErrBadRange = errors.New("xarray: bad range")
)
