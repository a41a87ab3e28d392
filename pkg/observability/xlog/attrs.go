package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/simkit/pkg/object/xsimid"
)

// =============================================================================
// 标准字段名
//
// 与 simkit 各组件内部日志使用的字段名保持一致，
// 应用层日志与库日志可以按同一组 key 聚合检索。
// =============================================================================

const (
	// KeyError 错误字段
	KeyError = "error"

	// KeyDuration 耗时字段
	KeyDuration = "duration"

	// KeyPath 文件路径字段
	KeyPath = "path"

	// KeyCount 计数字段
	KeyCount = "count"

	// KeyBytes 字节数字段
	KeyBytes = "bytes"

	// KeySnap 快照编号字段
	KeySnap = "snap"

	// KeyField 物理量字段名
	KeyField = "field"

	// KeyFileType 数据文件类别字段
	KeyFileType = "filetype"

	// KeyKeyType 键类型字段
	KeyKeyType = "keytype"

	// KeyIdentity 对象身份字段
	KeyIdentity = "identity"
)

// =============================================================================
// 便捷属性构造函数
// =============================================================================

// Err 创建错误属性
//
// err 为 nil 时返回空属性（会被 slog 忽略），调用方无需判空：
//
//	logger.Error("load failed", xlog.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Path 创建文件路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Count 创建计数属性
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Bytes 创建字节数属性
func Bytes(n int64) slog.Attr {
	return slog.Int64(KeyBytes, n)
}

// Snap 创建快照编号属性
func Snap(snap string) slog.Attr {
	return slog.String(KeySnap, snap)
}

// Field 创建物理量字段名属性
func Field(name string) slog.Attr {
	return slog.String(KeyField, name)
}

// FileType 创建数据文件类别属性
func FileType(ft string) slog.Attr {
	return slog.String(KeyFileType, ft)
}

// KeyType 创建键类型属性
func KeyType(kt string) slog.Attr {
	return slog.String(KeyKeyType, kt)
}

// Identity 创建对象身份属性，值为身份的规范串
func Identity(id xsimid.Identity) slog.Attr {
	return slog.String(KeyIdentity, id.Canonical())
}
