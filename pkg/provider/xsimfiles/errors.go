package xsimfiles

import "errors"

// ============================================================================
// 寻址错误
// ============================================================================

var (
	// ErrUnknownField 表示数据集中不存在该字段。
	ErrUnknownField = errors.New("xsimfiles: unknown field")

	// ErrUnknownSnap 表示数据集根目录下没有该快照。
	ErrUnknownSnap = errors.New("xsimfiles: unknown snapshot")
)

// ============================================================================
// 数据集内容错误
// ============================================================================

var (
	// ErrBadManifest 表示 manifest 缺失、无法解析或声明不合法。
	ErrBadManifest = errors.New("xsimfiles: bad manifest")

	// ErrCorruptData 表示数据文件长度与抽取器声明不一致。
	ErrCorruptData = errors.New("xsimfiles: corrupt data file")

	// ErrExtractorMismatch 表示注册的数据表与抽取器声明不匹配。
	ErrExtractorMismatch = errors.New("xsimfiles: extractor does not match table")

	// ErrDuplicateField 表示同一抽取位置被注册了两次。
	ErrDuplicateField = errors.New("xsimfiles: duplicate field")
)

// ============================================================================
// 生命周期错误
// ============================================================================

var (
	// ErrInvalidRoot 表示数据集根目录不存在或不是目录。
	ErrInvalidRoot = errors.New("xsimfiles: invalid dataset root")

	// ErrCatalogClosed 表示目录已关闭，不能再发放 Provider。
	ErrCatalogClosed = errors.New("xsimfiles: catalog closed")
)
