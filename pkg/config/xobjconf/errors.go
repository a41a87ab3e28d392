package xobjconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xobjconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xobjconf: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("xobjconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xobjconf: failed to parse config")

	// ErrInvalidSpec 表示配置内容未通过校验。
	ErrInvalidSpec = errors.New("xobjconf: invalid spec")

	// ErrNoMaskBinding 表示 keytype 在给定掩码类型下没有可用的掩码绑定。
	ErrNoMaskBinding = errors.New("xobjconf: no mask binding")
)
